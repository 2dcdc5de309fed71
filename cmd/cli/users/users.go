package users

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/nvellek/agora/cmd/cli/config"
	"github.com/nvellek/agora/cmd/cli/output"
	"github.com/spf13/cobra"
)

// ==========================
// Init Users
// ==========================
func InitUsers(rootCmd *cobra.Command) {
	rootCmd.AddCommand(
		onlineCmd(),
		profileCmd(),
	)
}

// ==========================
// ONLINE
// ==========================
func onlineCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "online",
		Short: "Show who is online right now",
		Run: func(cmd *cobra.Command, args []string) {

			resp, err := http.Get(config.APIURL() + "/online")
			if err != nil {
				fmt.Println(err)
				return
			}
			defer resp.Body.Close()

			var usernames []string
			if err := json.NewDecoder(resp.Body).Decode(&usernames); err != nil {
				fmt.Println("invalid response:", err)
				return
			}

			if asJSON {
				b, _ := json.MarshalIndent(usernames, "", "  ")
				fmt.Println(string(b))
				return
			}

			if len(usernames) == 0 {
				fmt.Println("Nobody online.")
				return
			}
			rows := make([][]interface{}, 0, len(usernames))
			for _, u := range usernames {
				rows = append(rows, []interface{}{u})
			}
			output.RenderTable([]string{"Username"}, rows)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON")

	return cmd
}

// ==========================
// PROFILE
// ==========================
func profileCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "profile [username]",
		Short: "Show a user's profile and posts",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {

			resp, err := http.Get(config.APIURL() + "/user/" + url.PathEscape(args[0]))
			if err != nil {
				fmt.Println(err)
				return
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusNotFound {
				fmt.Println("User not found")
				return
			}

			var profile struct {
				Username string `json:"username"`
				Email    string `json:"email"`
				Joined   string `json:"joined"`
				Posts    []struct {
					ID        int    `json:"id"`
					Title     string `json:"title"`
					CreatedAt string `json:"created_at"`
				} `json:"posts"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
				fmt.Println("invalid response:", err)
				return
			}

			if asJSON {
				b, _ := json.MarshalIndent(profile, "", "  ")
				fmt.Println(string(b))
				return
			}

			fmt.Printf("%s (joined %s)\n", profile.Username, profile.Joined)
			if profile.Email != "" {
				fmt.Println("Email:", profile.Email)
			}
			if len(profile.Posts) == 0 {
				fmt.Println("No posts yet.")
				return
			}
			rows := make([][]interface{}, 0, len(profile.Posts))
			for _, p := range profile.Posts {
				rows = append(rows, []interface{}{p.ID, p.Title, p.CreatedAt})
			}
			output.RenderTable([]string{"ID", "Title", "Created"}, rows)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON")

	return cmd
}
