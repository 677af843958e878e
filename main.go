package main

import "github.com/teamkeel/dataservice/cmd"

func main() {
	cmd.Execute()
}
