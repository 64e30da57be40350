// revealctl replays the portfolio page's scroll reveal sequence on a
// virtual clock and prints every style mutation it makes.
package main

func main() {
	Execute()
}
