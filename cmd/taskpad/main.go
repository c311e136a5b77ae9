// Command taskpad is a personal task manager with recurring tasks and
// reminders.
package main

import "github.com/mesh-intelligence/taskpad/internal/cli"

func main() {
	cli.Execute()
}
