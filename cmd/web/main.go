package main

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed templates
var templatesFS embed.FS

const (
	cookieName     = "agora_token"
	userCookieName = "agora_user"
	defaultPort    = "3000"
	defaultAPI     = "http://localhost:8080"
	envWebPort     = "AGORA_WEB_PORT"
	envAPIURL      = "AGORA_API_URL"
)

func main() {
	port := getEnv(envWebPort, defaultPort)
	apiBase := getEnv(envAPIURL, defaultAPI)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health (no auth, no templates)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	// Public: browsing needs no account
	r.Get("/login", loginForm)
	r.Post("/login", loginSubmit(apiBase))
	r.Get("/register", registerForm)
	r.Post("/register", registerSubmit(apiBase))
	r.Get("/logout", logout)
	r.Get("/", postsList(apiBase))
	r.Get("/posts", postsList(apiBase))
	r.Get("/posts/{id}", postDetail(apiBase))
	r.Get("/user/{username}", profilePage(apiBase))
	r.Get("/online", onlineProxy(apiBase))

	// Protected: anything that writes
	r.Group(func(r chi.Router) {
		r.Use(requireAuth(apiBase))
		r.Get("/posts/new", postCreateForm)
		r.Post("/posts", postCreate(apiBase))
		r.Get("/posts/{id}/edit", postEditForm(apiBase))
		r.Post("/posts/{id}/edit", postUpdate(apiBase))
		r.Get("/posts/{id}/delete", postDeleteConfirm(apiBase))
		r.Post("/posts/{id}/delete", postDelete(apiBase))
		r.Post("/posts/{id}/replies", replyCreate(apiBase))
		r.Get("/replies/{id}/edit", replyEditForm(apiBase))
		r.Post("/replies/{id}/edit", replyUpdate(apiBase))
		r.Post("/replies/{id}/delete", replyDelete(apiBase))
	})

	log.Printf("Web UI running on http://localhost:%s (API: %s)", port, apiBase)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatal(err)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// requireAuth redirects to /login if cookie is missing or if the API returns 401 (invalid/expired token).
func requireAuth(apiBase string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := r.Cookie(cookieName)
			if err != nil || token.Value == "" {
				http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.Path), http.StatusFound)
				return
			}
			// Validate token with API so expired/invalid tokens send user to login before any page loads.
			_, status, _ := apiGet(apiBase, "/stats", token.Value)
			if status == http.StatusUnauthorized {
				clearAuthAndRedirectToLogin(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// currentUser returns the signed-in username from the display cookie, or "".
func currentUser(r *http.Request) string {
	c, err := r.Cookie(userCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func cookieToken(r *http.Request) string {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func loginForm(w http.ResponseWriter, r *http.Request) {
	if _, err := r.Cookie(cookieName); err == nil {
		http.Redirect(w, r, "/posts", http.StatusFound)
		return
	}
	renderTemplate(w, "login.html", nil)
}

func loginSubmit(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		username := strings.TrimSpace(r.FormValue("username"))
		password := r.FormValue("password")
		if username == "" || password == "" {
			renderTemplate(w, "login.html", map[string]string{"Error": "Username and password are required"})
			return
		}

		body, _ := json.Marshal(map[string]string{"username": username, "password": password})
		data, status, err := apiPost(apiBase, "/login", "", body)
		if err != nil {
			renderTemplate(w, "login.html", map[string]string{"Error": "Cannot reach API: " + err.Error()})
			return
		}
		if status != http.StatusOK {
			var errResp struct{ Error string }
			_ = json.Unmarshal(data, &errResp)
			msg := errResp.Error
			if msg == "" {
				msg = string(data)
			}
			renderTemplate(w, "login.html", map[string]string{"Error": msg})
			return
		}

		var out struct {
			Token    string `json:"token"`
			Username string `json:"username"`
		}
		if err := json.Unmarshal(data, &out); err != nil || out.Token == "" {
			renderTemplate(w, "login.html", map[string]string{"Error": "Invalid login response"})
			return
		}

		next := r.URL.Query().Get("next")
		if next == "" {
			next = "/posts"
		}

		http.SetCookie(w, &http.Cookie{
			Name:     cookieName,
			Value:    out.Token,
			Path:     "/",
			MaxAge:   24 * 3600,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		// Display-only cookie so templates can show the signed-in user.
		http.SetCookie(w, &http.Cookie{
			Name:     userCookieName,
			Value:    out.Username,
			Path:     "/",
			MaxAge:   24 * 3600,
			SameSite: http.SameSiteLaxMode,
		})
		http.Redirect(w, r, next, http.StatusFound)
	}
}

func registerForm(w http.ResponseWriter, r *http.Request) {
	if _, err := r.Cookie(cookieName); err == nil {
		http.Redirect(w, r, "/posts", http.StatusFound)
		return
	}
	renderTemplate(w, "register.html", nil)
}

func registerSubmit(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		username := strings.TrimSpace(r.FormValue("username"))
		password := r.FormValue("password")
		email := strings.TrimSpace(r.FormValue("email"))
		if username == "" || password == "" {
			renderTemplate(w, "register.html", map[string]string{"Error": "Username and password are required", "Username": username, "Email": email})
			return
		}

		body, _ := json.Marshal(map[string]string{"username": username, "password": password, "email": email})
		data, status, err := apiPost(apiBase, "/register", "", body)
		if err != nil {
			renderTemplate(w, "register.html", map[string]string{"Error": "Cannot reach API: " + err.Error(), "Username": username, "Email": email})
			return
		}
		if status != http.StatusOK {
			var errResp struct{ Error string }
			_ = json.Unmarshal(data, &errResp)
			msg := errResp.Error
			if msg == "" {
				msg = string(data)
			}
			renderTemplate(w, "register.html", map[string]string{"Error": msg, "Username": username, "Email": email})
			return
		}

		http.Redirect(w, r, "/login", http.StatusFound)
	}
}

func logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: cookieName, Value: "", Path: "/", MaxAge: -1})
	http.SetCookie(w, &http.Cookie{Name: userCookieName, Value: "", Path: "/", MaxAge: -1})
	http.Redirect(w, r, "/posts", http.StatusFound)
}

// clearAuthAndRedirectToLogin clears the token cookie and redirects to login with next=current path.
// Call when the API returns 401 (expired or invalid token) so the user can sign in again.
func clearAuthAndRedirectToLogin(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: cookieName, Value: "", Path: "/", MaxAge: -1})
	http.SetCookie(w, &http.Cookie{Name: userCookieName, Value: "", Path: "/", MaxAge: -1})
	next := r.URL.Path
	if r.URL.RawQuery != "" {
		next += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, "/login?next="+url.QueryEscape(next), http.StatusFound)
}

// apiGet performs GET to API with token from request cookie.
func apiGet(apiBase, path, token string) ([]byte, int, error) {
	req, _ := http.NewRequest("GET", apiBase+path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return data, resp.StatusCode, nil
}

// apiPost performs POST to API with token and JSON body.
func apiPost(apiBase, path, token string, body []byte) ([]byte, int, error) {
	req, _ := http.NewRequest("POST", apiBase+path, strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return data, resp.StatusCode, nil
}

// apiPut performs PUT to API with token and JSON body.
func apiPut(apiBase, path, token string, body []byte) ([]byte, int, error) {
	req, _ := http.NewRequest("PUT", apiBase+path, strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return data, resp.StatusCode, nil
}

// apiDelete performs DELETE to API with token.
func apiDelete(apiBase, path, token string) ([]byte, int, error) {
	req, _ := http.NewRequest("DELETE", apiBase+path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return data, resp.StatusCode, nil
}

// onlineProxy forwards the presence list so the page poller stays same-origin.
func onlineProxy(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, status, err := apiGet(apiBase, "/online", "")
		if err != nil {
			http.Error(w, "api unreachable", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write(data)
	}
}

type postView struct {
	ID        int     `json:"id"`
	Title     string  `json:"title"`
	Content   string  `json:"content"`
	Author    string  `json:"author"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt *string `json:"updated_at"`
}

type replyView struct {
	ID        int     `json:"id"`
	PostID    int     `json:"post_id"`
	Content   string  `json:"content"`
	Author    string  `json:"author"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt *string `json:"updated_at"`
}

func postsList(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := 1
		if p := r.URL.Query().Get("page"); p != "" {
			if n, err := strconv.Atoi(p); err == nil && n > 0 {
				page = n
			}
		}

		data, status, err := apiGet(apiBase, fmt.Sprintf("/posts?page=%d", page), "")
		if err != nil {
			renderTemplate(w, "posts.html", map[string]interface{}{"Error": err.Error(), "CurrentUser": currentUser(r)})
			return
		}
		if status != http.StatusOK {
			renderTemplate(w, "posts.html", map[string]interface{}{"Error": "API error: " + string(data), "CurrentUser": currentUser(r)})
			return
		}

		var out struct {
			Posts     []postView `json:"posts"`
			Page      int        `json:"page"`
			PageCount int        `json:"pageCount"`
		}
		if err := json.Unmarshal(data, &out); err != nil {
			renderTemplate(w, "posts.html", map[string]interface{}{"Error": "Invalid posts response", "CurrentUser": currentUser(r)})
			return
		}

		prevPage := 0
		if out.Page > 1 {
			prevPage = out.Page - 1
		}
		nextPage := 0
		if out.Page < out.PageCount {
			nextPage = out.Page + 1
		}

		renderTemplate(w, "posts.html", map[string]interface{}{
			"Posts":       out.Posts,
			"Page":        out.Page,
			"PageCount":   out.PageCount,
			"PrevPage":    prevPage,
			"NextPage":    nextPage,
			"CurrentUser": currentUser(r),
		})
	}
}

func postDetail(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		data, status, err := apiGet(apiBase, "/posts/"+id, "")
		if err != nil {
			renderTemplate(w, "post_detail.html", map[string]interface{}{"Error": err.Error(), "CurrentUser": currentUser(r)})
			return
		}
		if status == http.StatusNotFound {
			renderTemplate(w, "post_detail.html", map[string]interface{}{"Error": "Post not found", "CurrentUser": currentUser(r)})
			return
		}
		if status != http.StatusOK {
			renderTemplate(w, "post_detail.html", map[string]interface{}{"Error": "API error: " + string(data), "CurrentUser": currentUser(r)})
			return
		}

		var out struct {
			Post    postView    `json:"post"`
			Replies []replyView `json:"replies"`
		}
		if err := json.Unmarshal(data, &out); err != nil {
			renderTemplate(w, "post_detail.html", map[string]interface{}{"Error": "Invalid post response", "CurrentUser": currentUser(r)})
			return
		}

		renderTemplate(w, "post_detail.html", map[string]interface{}{
			"Post":        out.Post,
			"Replies":     out.Replies,
			"CurrentUser": currentUser(r),
			"ReplyError":  r.URL.Query().Get("reply_error") == "1",
		})
	}
}

func profilePage(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := chi.URLParam(r, "username")

		data, status, err := apiGet(apiBase, "/user/"+url.PathEscape(username), "")
		if err != nil {
			renderTemplate(w, "profile.html", map[string]interface{}{"Error": err.Error(), "CurrentUser": currentUser(r)})
			return
		}
		if status == http.StatusNotFound {
			renderTemplate(w, "profile.html", map[string]interface{}{"Error": "User not found", "CurrentUser": currentUser(r)})
			return
		}
		if status != http.StatusOK {
			renderTemplate(w, "profile.html", map[string]interface{}{"Error": "API error: " + string(data), "CurrentUser": currentUser(r)})
			return
		}

		var profile struct {
			Username string     `json:"username"`
			Email    string     `json:"email"`
			Joined   string     `json:"joined"`
			Posts    []postView `json:"posts"`
		}
		if err := json.Unmarshal(data, &profile); err != nil {
			renderTemplate(w, "profile.html", map[string]interface{}{"Error": "Invalid profile response", "CurrentUser": currentUser(r)})
			return
		}

		renderTemplate(w, "profile.html", map[string]interface{}{
			"Profile":     profile,
			"CurrentUser": currentUser(r),
		})
	}
}

// ====== Post create/edit/delete (Web UI) ======

func postCreateForm(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, "post_form.html", map[string]interface{}{
		"FormAction":  "/posts",
		"SubmitLabel": "Create post",
		"CurrentUser": currentUser(r),
	})
}

func postCreate(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		title := strings.TrimSpace(r.FormValue("title"))
		content := strings.TrimSpace(r.FormValue("content"))

		if title == "" || content == "" {
			renderTemplate(w, "post_form.html", map[string]interface{}{
				"Error":       "Title and content are required",
				"FormAction":  "/posts",
				"SubmitLabel": "Create post",
				"CurrentUser": currentUser(r),
			})
			return
		}

		body, _ := json.Marshal(map[string]string{"title": title, "content": content})
		data, status, err := apiPost(apiBase, "/posts", cookieToken(r), body)
		if err != nil {
			renderTemplate(w, "post_form.html", map[string]interface{}{
				"Error":       err.Error(),
				"FormAction":  "/posts",
				"SubmitLabel": "Create post",
				"CurrentUser": currentUser(r),
			})
			return
		}
		if status == http.StatusUnauthorized {
			clearAuthAndRedirectToLogin(w, r)
			return
		}
		if status != http.StatusOK {
			var errResp struct{ Error string }
			_ = json.Unmarshal(data, &errResp)
			msg := errResp.Error
			if msg == "" {
				msg = string(data)
			}
			renderTemplate(w, "post_form.html", map[string]interface{}{
				"Error":       "API: " + msg,
				"FormAction":  "/posts",
				"SubmitLabel": "Create post",
				"CurrentUser": currentUser(r),
			})
			return
		}

		var post struct {
			ID int `json:"id"`
		}
		if err := json.Unmarshal(data, &post); err != nil || post.ID == 0 {
			renderTemplate(w, "post_form.html", map[string]interface{}{
				"Error":       "Invalid create post response",
				"FormAction":  "/posts",
				"SubmitLabel": "Create post",
				"CurrentUser": currentUser(r),
			})
			return
		}

		http.Redirect(w, r, "/posts/"+fmt.Sprint(post.ID), http.StatusFound)
	}
}

func postEditForm(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		data, status, err := apiGet(apiBase, "/posts/"+id, "")
		if err != nil {
			renderTemplate(w, "post_form.html", map[string]interface{}{"Error": err.Error(), "CurrentUser": currentUser(r)})
			return
		}
		if status != http.StatusOK {
			renderTemplate(w, "post_form.html", map[string]interface{}{"Error": "API error: " + string(data), "CurrentUser": currentUser(r)})
			return
		}

		var out struct {
			Post postView `json:"post"`
		}
		if err := json.Unmarshal(data, &out); err != nil {
			renderTemplate(w, "post_form.html", map[string]interface{}{"Error": "Invalid post response", "CurrentUser": currentUser(r)})
			return
		}

		renderTemplate(w, "post_form.html", map[string]interface{}{
			"Post":        out.Post,
			"FormAction":  "/posts/" + id + "/edit",
			"SubmitLabel": "Save changes",
			"CurrentUser": currentUser(r),
		})
	}
}

func postUpdate(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		title := strings.TrimSpace(r.FormValue("title"))
		content := strings.TrimSpace(r.FormValue("content"))

		if title == "" || content == "" {
			renderTemplate(w, "post_form.html", map[string]interface{}{
				"Error":       "Title and content are required",
				"FormAction":  "/posts/" + id + "/edit",
				"SubmitLabel": "Save changes",
				"CurrentUser": currentUser(r),
			})
			return
		}

		body, _ := json.Marshal(map[string]string{"title": title, "content": content})
		data, status, err := apiPut(apiBase, "/posts/"+id, cookieToken(r), body)
		if err != nil {
			renderTemplate(w, "post_form.html", map[string]interface{}{
				"Error":       err.Error(),
				"FormAction":  "/posts/" + id + "/edit",
				"SubmitLabel": "Save changes",
				"CurrentUser": currentUser(r),
			})
			return
		}
		if status == http.StatusUnauthorized {
			clearAuthAndRedirectToLogin(w, r)
			return
		}
		if status != http.StatusOK {
			var errResp struct{ Error string }
			_ = json.Unmarshal(data, &errResp)
			msg := errResp.Error
			if msg == "" {
				msg = string(data)
			}
			renderTemplate(w, "post_form.html", map[string]interface{}{
				"Error":       "API: " + msg,
				"FormAction":  "/posts/" + id + "/edit",
				"SubmitLabel": "Save changes",
				"CurrentUser": currentUser(r),
			})
			return
		}

		http.Redirect(w, r, "/posts/"+id, http.StatusFound)
	}
}

func postDeleteConfirm(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		data, status, err := apiGet(apiBase, "/posts/"+id, "")
		if err != nil {
			renderTemplate(w, "post_delete_confirm.html", map[string]interface{}{"Error": err.Error(), "PostID": id, "CurrentUser": currentUser(r)})
			return
		}
		if status != http.StatusOK {
			renderTemplate(w, "post_delete_confirm.html", map[string]interface{}{"Error": "Post not found or API error", "PostID": id, "CurrentUser": currentUser(r)})
			return
		}

		var out struct {
			Post    postView    `json:"post"`
			Replies []replyView `json:"replies"`
		}
		if err := json.Unmarshal(data, &out); err != nil {
			renderTemplate(w, "post_delete_confirm.html", map[string]interface{}{"Error": "Invalid post response", "PostID": id, "CurrentUser": currentUser(r)})
			return
		}

		renderTemplate(w, "post_delete_confirm.html", map[string]interface{}{
			"Post":        out.Post,
			"ReplyCount":  len(out.Replies),
			"CurrentUser": currentUser(r),
		})
	}
}

func postDelete(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		body, status, err := apiDelete(apiBase, "/posts/"+id, cookieToken(r))
		if err != nil {
			renderTemplate(w, "post_delete_confirm.html", map[string]interface{}{
				"Error":       err.Error(),
				"PostID":      id,
				"CurrentUser": currentUser(r),
			})
			return
		}
		if status == http.StatusUnauthorized {
			clearAuthAndRedirectToLogin(w, r)
			return
		}
		if status == http.StatusOK {
			http.Redirect(w, r, "/posts", http.StatusFound)
			return
		}

		msg := string(body)
		if len(msg) > 200 {
			msg = msg[:200] + "..."
		}
		renderTemplate(w, "post_delete_confirm.html", map[string]interface{}{
			"Error":       "Delete failed: " + msg,
			"PostID":      id,
			"CurrentUser": currentUser(r),
		})
	}
}

// ====== Replies (Web UI) ======

func replyCreate(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		content := strings.TrimSpace(r.FormValue("content"))
		if content == "" {
			http.Redirect(w, r, "/posts/"+id+"?reply_error=1", http.StatusFound)
			return
		}

		body, _ := json.Marshal(map[string]string{"content": content})
		_, status, err := apiPost(apiBase, "/posts/"+id+"/replies", cookieToken(r), body)
		if err != nil || status == http.StatusUnauthorized {
			clearAuthAndRedirectToLogin(w, r)
			return
		}
		if status != http.StatusOK {
			http.Redirect(w, r, "/posts/"+id+"?reply_error=1", http.StatusFound)
			return
		}
		http.Redirect(w, r, "/posts/"+id, http.StatusFound)
	}
}

func replyEditForm(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		postID := r.URL.Query().Get("post")

		// No GET /replies/{id} on the API; pull the parent post and pick the reply out.
		data, status, err := apiGet(apiBase, "/posts/"+postID, "")
		if err != nil || status != http.StatusOK {
			renderTemplate(w, "reply_form.html", map[string]interface{}{"Error": "Reply not found", "CurrentUser": currentUser(r)})
			return
		}

		var out struct {
			Replies []replyView `json:"replies"`
		}
		if err := json.Unmarshal(data, &out); err != nil {
			renderTemplate(w, "reply_form.html", map[string]interface{}{"Error": "Invalid post response", "CurrentUser": currentUser(r)})
			return
		}

		replyID, _ := strconv.Atoi(id)
		for _, rp := range out.Replies {
			if rp.ID == replyID {
				renderTemplate(w, "reply_form.html", map[string]interface{}{
					"Reply":       rp,
					"FormAction":  fmt.Sprintf("/replies/%d/edit?post=%s", rp.ID, postID),
					"CurrentUser": currentUser(r),
				})
				return
			}
		}
		renderTemplate(w, "reply_form.html", map[string]interface{}{"Error": "Reply not found", "CurrentUser": currentUser(r)})
	}
}

func replyUpdate(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		postID := r.URL.Query().Get("post")
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		content := strings.TrimSpace(r.FormValue("content"))
		if content == "" {
			renderTemplate(w, "reply_form.html", map[string]interface{}{
				"Error":       "Content is required",
				"FormAction":  "/replies/" + id + "/edit?post=" + postID,
				"CurrentUser": currentUser(r),
			})
			return
		}

		body, _ := json.Marshal(map[string]string{"content": content})
		data, status, err := apiPut(apiBase, "/replies/"+id, cookieToken(r), body)
		if err != nil {
			renderTemplate(w, "reply_form.html", map[string]interface{}{"Error": err.Error(), "CurrentUser": currentUser(r)})
			return
		}
		if status == http.StatusUnauthorized {
			clearAuthAndRedirectToLogin(w, r)
			return
		}
		if status != http.StatusOK {
			var errResp struct{ Error string }
			_ = json.Unmarshal(data, &errResp)
			msg := errResp.Error
			if msg == "" {
				msg = string(data)
			}
			renderTemplate(w, "reply_form.html", map[string]interface{}{
				"Error":       "API: " + msg,
				"FormAction":  "/replies/" + id + "/edit?post=" + postID,
				"CurrentUser": currentUser(r),
			})
			return
		}

		http.Redirect(w, r, "/posts/"+postID, http.StatusFound)
	}
}

func replyDelete(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		postID := r.URL.Query().Get("post")

		_, status, err := apiDelete(apiBase, "/replies/"+id, cookieToken(r))
		if err != nil || status == http.StatusUnauthorized {
			clearAuthAndRedirectToLogin(w, r)
			return
		}
		if postID != "" {
			http.Redirect(w, r, "/posts/"+postID, http.StatusFound)
			return
		}
		http.Redirect(w, r, "/posts", http.StatusFound)
	}
}

func renderTemplate(w http.ResponseWriter, name string, data interface{}) {
	content, err := templatesFS.ReadFile("templates/" + name)
	if err != nil {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if name == "login.html" || name == "register.html" {
		t := template.Must(template.New("").Parse(string(content)))
		_ = t.ExecuteTemplate(w, "standalone", data)
		return
	}

	layout, _ := templatesFS.ReadFile("templates/layout.html")
	t := template.Must(template.New("").Parse(string(layout)))
	t = template.Must(t.New("").Parse(string(content)))
	if err := t.ExecuteTemplate(w, "layout", data); err != nil {
		log.Printf("template execute: %v", err)
	}
}
