package replies

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/nvellek/agora/cmd/cli/config"
	"github.com/spf13/cobra"
)

// ==========================
// Init Replies
// ==========================
func InitReplies(rootCmd *cobra.Command) {

	repliesCmd := &cobra.Command{
		Use:   "replies",
		Short: "Manage replies",
	}

	repliesCmd.AddCommand(
		addReplyCmd(),
		editReplyCmd(),
		deleteReplyCmd(),
	)

	rootCmd.AddCommand(repliesCmd)
}

// ==========================
// ADD
// ==========================
func addReplyCmd() *cobra.Command {

	var content string

	cmd := &cobra.Command{
		Use:   "add [postID]",
		Short: "Reply to a post",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {

			token, err := config.LoadToken()
			if err != nil {
				fmt.Println("Please login first")
				return
			}

			body, _ := json.Marshal(map[string]string{"content": content})

			req, _ := http.NewRequest("POST", config.APIURL()+"/posts/"+args[0]+"/replies", bytes.NewBuffer(body))
			req.Header.Set("Authorization", "Bearer "+token)
			req.Header.Set("Content-Type", "application/json")

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				fmt.Println(err)
				return
			}
			defer resp.Body.Close()

			var out any
			json.NewDecoder(resp.Body).Decode(&out)
			b, _ := json.MarshalIndent(out, "", "  ")
			fmt.Println(string(b))
		},
	}

	cmd.Flags().StringVar(&content, "content", "", "reply content")

	return cmd
}

// ==========================
// EDIT
// ==========================
func editReplyCmd() *cobra.Command {

	var content string

	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Edit your reply",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {

			token, err := config.LoadToken()
			if err != nil {
				fmt.Println("Please login first")
				return
			}

			body, _ := json.Marshal(map[string]string{"content": content})

			req, _ := http.NewRequest("PUT", config.APIURL()+"/replies/"+args[0], bytes.NewBuffer(body))
			req.Header.Set("Authorization", "Bearer "+token)
			req.Header.Set("Content-Type", "application/json")

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				fmt.Println(err)
				return
			}
			defer resp.Body.Close()

			var out any
			json.NewDecoder(resp.Body).Decode(&out)
			b, _ := json.MarshalIndent(out, "", "  ")
			fmt.Println(string(b))
		},
	}

	cmd.Flags().StringVar(&content, "content", "", "new content")

	return cmd
}

// ==========================
// DELETE
// ==========================
func deleteReplyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete your reply",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {

			token, err := config.LoadToken()
			if err != nil {
				fmt.Println("Please login first")
				return
			}

			req, _ := http.NewRequest("DELETE", config.APIURL()+"/replies/"+args[0], nil)
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				fmt.Println(err)
				return
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusOK {
				fmt.Println("Reply deleted")
			} else {
				fmt.Println("Failed to delete reply")
			}
		},
	}
}
