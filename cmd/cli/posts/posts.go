package posts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/nvellek/agora/cmd/cli/config"
	"github.com/nvellek/agora/cmd/cli/output"
	"github.com/spf13/cobra"
)

type post struct {
	ID        int     `json:"id"`
	Title     string  `json:"title"`
	Content   string  `json:"content"`
	Author    string  `json:"author"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt *string `json:"updated_at"`
}

type reply struct {
	ID        int    `json:"id"`
	Content   string `json:"content"`
	Author    string `json:"author"`
	CreatedAt string `json:"created_at"`
}

// ==========================
// Init Posts
// ==========================
func InitPosts(rootCmd *cobra.Command) {

	postsCmd := &cobra.Command{
		Use:   "posts",
		Short: "Browse and manage posts",
	}

	postsCmd.AddCommand(
		listPostsCmd(),
		getPostCmd(),
		createPostCmd(),
		editPostCmd(),
		deletePostCmd(),
	)

	rootCmd.AddCommand(postsCmd)
}

// ==========================
// LIST
// ==========================
func listPostsCmd() *cobra.Command {
	var page int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List posts, newest first",
		Run: func(cmd *cobra.Command, args []string) {

			resp, err := http.Get(fmt.Sprintf("%s/posts?page=%d", config.APIURL(), page))
			if err != nil {
				fmt.Println(err)
				return
			}
			defer resp.Body.Close()

			var out struct {
				Posts     []post `json:"posts"`
				Page      int    `json:"page"`
				PageCount int    `json:"pageCount"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
				fmt.Println("invalid response:", err)
				return
			}

			if asJSON {
				b, _ := json.MarshalIndent(out, "", "  ")
				fmt.Println(string(b))
				return
			}

			rows := make([][]interface{}, 0, len(out.Posts))
			for _, p := range out.Posts {
				rows = append(rows, []interface{}{p.ID, p.Title, p.Author, p.CreatedAt})
			}
			output.RenderTable([]string{"ID", "Title", "Author", "Created"}, rows)
			fmt.Printf("Page %d of %d\n", out.Page, out.PageCount)
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON")

	return cmd
}

// ==========================
// GET
// ==========================
func getPostCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Show a post and its replies",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {

			resp, err := http.Get(config.APIURL() + "/posts/" + args[0])
			if err != nil {
				fmt.Println(err)
				return
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusNotFound {
				fmt.Println("Post not found")
				return
			}

			var out struct {
				Post    post    `json:"post"`
				Replies []reply `json:"replies"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
				fmt.Println("invalid response:", err)
				return
			}

			if asJSON {
				b, _ := json.MarshalIndent(out, "", "  ")
				fmt.Println(string(b))
				return
			}

			fmt.Printf("#%d %s\n", out.Post.ID, out.Post.Title)
			fmt.Printf("by %s on %s\n\n", out.Post.Author, out.Post.CreatedAt)
			fmt.Println(out.Post.Content)

			if len(out.Replies) > 0 {
				fmt.Printf("\nReplies (%d):\n", len(out.Replies))
				rows := make([][]interface{}, 0, len(out.Replies))
				for _, rp := range out.Replies {
					rows = append(rows, []interface{}{rp.ID, rp.Author, rp.Content, rp.CreatedAt})
				}
				output.RenderTable([]string{"ID", "Author", "Content", "Created"}, rows)
			}
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON")

	return cmd
}

// ==========================
// CREATE
// ==========================
func createPostCmd() *cobra.Command {

	var title string
	var content string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a post",
		Run: func(cmd *cobra.Command, args []string) {

			token, err := config.LoadToken()
			if err != nil {
				fmt.Println("Please login first")
				return
			}

			payload := map[string]string{
				"title":   title,
				"content": content,
			}

			body, _ := json.Marshal(payload)

			req, _ := http.NewRequest("POST", config.APIURL()+"/posts", bytes.NewBuffer(body))
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

	cmd.Flags().StringVar(&title, "title", "", "post title")
	cmd.Flags().StringVar(&content, "content", "", "post content")

	return cmd
}

// ==========================
// EDIT
// ==========================
func editPostCmd() *cobra.Command {

	var title string
	var content string

	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Edit your post",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {

			token, err := config.LoadToken()
			if err != nil {
				fmt.Println("Please login first")
				return
			}

			payload := map[string]string{}
			if title != "" {
				payload["title"] = title
			}
			if content != "" {
				payload["content"] = content
			}
			if len(payload) == 0 {
				fmt.Println("Nothing to change: pass --title and/or --content")
				return
			}

			body, _ := json.Marshal(payload)

			req, _ := http.NewRequest("PUT", config.APIURL()+"/posts/"+args[0], bytes.NewBuffer(body))
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

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&content, "content", "", "new content")

	return cmd
}

// ==========================
// DELETE
// ==========================
func deletePostCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete your post and its replies",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {

			token, err := config.LoadToken()
			if err != nil {
				fmt.Println("Please login first")
				return
			}

			req, _ := http.NewRequest("DELETE", config.APIURL()+"/posts/"+args[0], nil)
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				fmt.Println(err)
				return
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusOK {
				fmt.Println("Post deleted")
			} else {
				fmt.Println("Failed to delete post")
			}
		},
	}
}
