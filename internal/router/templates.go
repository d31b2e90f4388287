package router

import (
	"fmt"
	"html/template"
	"path/filepath"
	"time"

	"kvartal/internal/storage"
	"kvartal/internal/utils"

	"github.com/gin-contrib/multitemplate"
)

// views maps handler template names to files under views/.
var views = []string{
	"auth/login.html",
	"auth/register.html",
	"post/list.html",
	"post/detail.html",
	"post/form.html",
	"message/list.html",
	"profile/view.html",
	"profile/edit.html",
	"shop/home.html",
	"shop/product.html",
	"error.html",
}

func loadTemplates(templatesDir string) multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	layouts, err := filepath.Glob(templatesDir + "/layouts/*.html")
	if err != nil {
		panic(err)
	}

	includes, err := filepath.Glob(templatesDir + "/includes/*.html")
	if err != nil {
		panic(err)
	}

	components, err := filepath.Glob(templatesDir + "/components/*.html")
	if err != nil {
		panic(err)
	}

	// Helper to assemble files
	assemble := func(view string) []string {
		files := make([]string, 0)
		files = append(files, layouts...)
		files = append(files, includes...)
		files = append(files, components...)
		files = append(files, view)
		return files
	}

	funcMap := FuncMap()
	for _, name := range views {
		r.AddFromFilesFuncs(name, funcMap, assemble(templatesDir+"/views/"+name)...)
	}
	return r
}

// FuncMap holds the helpers every template may call.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"dict": func(values ...interface{}) (map[string]interface{}, error) {
			if len(values)%2 != 0 {
				return nil, fmt.Errorf("invalid dict call")
			}
			dict := make(map[string]interface{}, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict keys must be strings")
				}
				dict[key] = values[i+1]
			}
			return dict, nil
		},
		"add": func(a, b int) int {
			return a + b
		},
		"timeAgo":  timeAgo,
		"date":     func(t time.Time) string { return t.Format("Jan 2, 2006 15:04") },
		"markdown": utils.RenderMarkdown,
		"excerpt":  utils.Excerpt,
		"mediaURL": storage.URL,
	}
}

func timeAgo(t time.Time) string {
	return timeAgoSince(int(time.Since(t).Seconds()))
}

func timeAgoSince(seconds int) string {
	plural := func(n int, unit string) string {
		if n == 1 {
			return fmt.Sprintf("1 %s ago", unit)
		}
		return fmt.Sprintf("%d %ss ago", n, unit)
	}

	switch {
	case seconds < 60:
		return "just now"
	case seconds < 3600:
		return plural(seconds/60, "minute")
	case seconds < 86400:
		return plural(seconds/3600, "hour")
	case seconds < 2592000:
		return plural(seconds/86400, "day")
	case seconds < 31536000:
		return plural(seconds/2592000, "month")
	}
	return plural(seconds/31536000, "year")
}
