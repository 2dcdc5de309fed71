package main

import (
	"fmt"
	"os"

	"github.com/nvellek/agora/cmd/cli/auth"
	"github.com/nvellek/agora/cmd/cli/posts"
	"github.com/nvellek/agora/cmd/cli/replies"
	"github.com/nvellek/agora/cmd/cli/root"
	"github.com/nvellek/agora/cmd/cli/users"
)

func main() {
	rootCmd := root.GetRoot()
	auth.InitAuth(rootCmd)
	posts.InitPosts(rootCmd)
	replies.InitReplies(rootCmd)
	users.InitUsers(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
