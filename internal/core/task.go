package core

import "fmt"

// Task is a pickup/delivery pair released at tick R. Equality and hashing
// are by (S, G, R); since every field is comparable, a Task value can be
// used directly as a Go map key without an explicit hash/equals pair.
type Task struct {
	S Position
	G Position
	R int
}

// String renders a Task for logging, matching the source repr.
func (t Task) String() string {
	return fmt.Sprintf("task(s:%s,g:%s,r:%d)", t.S, t.G, t.R)
}
