package main

import "github.com/frahmantamala/photo-fundraising/cmd"

func main() {
	cmd.Execute()
}
