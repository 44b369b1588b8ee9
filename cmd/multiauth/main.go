// Command multiauth runs the authentication server and its maintenance tasks.
package main

import "github.com/MrEthical07/multiAuth/cmd/multiauth/cmd"

func main() {
	cmd.Execute()
}
