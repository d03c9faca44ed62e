package render

import (
	"github.com/gin-gonic/gin"
)

// HTML renders a template, injecting the conventional keys every page
// expects: the signed-in username (if any) and the request id.
func HTML(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if _, ok := data["User"]; !ok {
		data["User"] = c.GetString("userName")
	}
	data["RequestID"] = c.GetString("request_id")
	c.HTML(status, name, data)
}

// ErrorPage renders the shared error template with the given status.
func ErrorPage(c *gin.Context, status int, title, message string) {
	HTML(c, status, "error.tmpl", gin.H{
		"Title": title,
		"Error": message,
	})
}
