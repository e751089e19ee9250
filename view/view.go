// Package view renders server-side HTML pages. Each page is parsed together
// with templates/layout.html and the partials under templates/partials, and
// executed with a per-request function map.
package view

import (
	"bytes"
	"crypto/sha1"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/diewo77/go-bookstore/auth"
	"github.com/diewo77/go-bookstore/httpx"
)

var (
	baseDir  string
	once     sync.Once
	tplCache = struct {
		sync.RWMutex
		m map[string]*template.Template
	}{m: map[string]*template.Template{}}
	assetManifest     map[string]string
	assetManifestOnce sync.Once

	// resolvers set by the host app so templates can check capabilities
	canResolver     func(*http.Request, string, string) bool
	isStaffResolver func(*http.Request) bool
)

// SetCanResolver sets the callback behind the "can" template func
// (resource, action) -> bool.
func SetCanResolver(f func(*http.Request, string, string) bool) {
	if f != nil {
		canResolver = f
	}
}

// SetIsStaffResolver sets the callback behind "isStaff".
func SetIsStaffResolver(f func(*http.Request) bool) {
	if f != nil {
		isStaffResolver = f
	}
}

// layoutBase walks upward from a template path to find the directory that contains layout.html.
// If none is found, it returns the template's own directory.
func layoutBase(mainPath string) string {
	d := filepath.Dir(mainPath)
	for {
		lp := filepath.Join(d, "layout.html")
		if fi, err := os.Stat(lp); err == nil && !fi.IsDir() {
			return d
		}
		p := filepath.Dir(d)
		if p == d {
			return filepath.Dir(mainPath)
		}
		d = p
	}
}

func detectBase() {
	for _, c := range []string{"templates", "../templates", "../../templates"} {
		if fi, err := os.Stat(filepath.Clean(c)); err == nil && fi.IsDir() {
			baseDir = filepath.Clean(c)
			return
		}
	}
	baseDir = "templates"
}

// Funcs returns the template func map bound to r.
func Funcs(r *http.Request) template.FuncMap {
	return template.FuncMap{
		"can": func(resource, action string) bool {
			if canResolver == nil || r == nil {
				return false
			}
			return canResolver(r, resource, action)
		},
		"isStaff": func() bool {
			if isStaffResolver == nil || r == nil {
				return false
			}
			return isStaffResolver(r)
		},
		"money": Money,
		"year":  func() int { return time.Now().Year() },
		"asset": resolveAsset,
		"date":  func(t time.Time) string { return t.Format("2006-01-02 15:04") },
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"short": func(id string) string {
			if len(id) > 8 {
				return id[:8]
			}
			return id
		},
		// dict builds a map for passing several values to a partial:
		// {{ template "book-card" (dict "Book" . "ShowAdd" true) }}
		"dict": func(values ...any) map[string]any {
			if len(values)%2 != 0 {
				return nil
			}
			m := make(map[string]any, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					continue
				}
				m[key] = values[i+1]
			}
			return m
		},
	}
}

// Money formats an amount with two decimals and a leading dollar sign.
func Money(v any) string {
	switch n := v.(type) {
	case decimal.Decimal:
		return "$" + n.StringFixed(2)
	case *decimal.Decimal:
		if n == nil {
			return "$0.00"
		}
		return "$" + n.StringFixed(2)
	case float64:
		return "$" + decimal.NewFromFloat(n).StringFixed(2)
	case int:
		return "$" + decimal.NewFromInt(int64(n)).StringFixed(2)
	default:
		return fmt.Sprint(v)
	}
}

// versionedAsset returns /static/<name>?v=<hash> for cache busting.
func versionedAsset(rel string) string {
	if strings.HasPrefix(rel, "http://") || strings.HasPrefix(rel, "https://") || strings.HasPrefix(rel, "//") {
		return rel
	}
	b, err := os.ReadFile(filepath.Join("static", rel))
	if err != nil {
		return "/static/" + rel
	}
	h := sha1.Sum(b)
	return "/static/" + rel + "?v=" + fmt.Sprintf("%x", h[:8])
}

// resolveAsset prefers a hashed filename from static/manifest.json.
func resolveAsset(rel string) string {
	if devMode() {
		parseManifest()
	} else {
		assetManifestOnce.Do(parseManifest)
	}
	if h, ok := assetManifest[rel]; ok {
		return "/static/" + h
	}
	return versionedAsset(rel)
}

func parseManifest() {
	b, err := os.ReadFile(filepath.Join("static", "manifest.json"))
	if err != nil {
		return
	}
	var m map[string]string
	if err := json.Unmarshal(b, &m); err != nil {
		return
	}
	assetManifest = m
}

func devMode() bool { return os.Getenv("DEV") == "1" }

// SetBaseDir overrides the template base directory.
func SetBaseDir(path string) {
	if path == "" {
		return
	}
	baseDir = filepath.Clean(path)
	once = sync.Once{}
}

// ResetForTests clears caches and forces base dir detection to rerun.
func ResetForTests() {
	tplCache.Lock()
	tplCache.m = map[string]*template.Template{}
	tplCache.Unlock()
	baseDir = ""
	once = sync.Once{}
}

func findTemplate(name string) (string, error) {
	mainPath := filepath.Join(baseDir, name)
	if _, err := os.Stat(mainPath); err == nil {
		return mainPath, nil
	}
	for _, c := range []string{
		filepath.Join("templates", name),
		filepath.Join("../templates", name),
		filepath.Join("../../templates", name),
		filepath.Join("../../../templates", name),
	} {
		if fi, err := os.Stat(c); err == nil && !fi.IsDir() {
			return c, nil
		}
	}
	return "", fmt.Errorf("template %s not found under %s", name, baseDir)
}

// parse builds the template set for a page. The func map passed here only
// declares names; real per-request funcs are bound on a clone.
func parse(name string) (*template.Template, error) {
	mainPath, err := findTemplate(name)
	if err != nil {
		return nil, err
	}
	baseDir = layoutBase(mainPath)
	files := []string{filepath.Join(baseDir, "layout.html"), mainPath}
	partials, _ := filepath.Glob(filepath.Join(baseDir, "partials", "*.html"))
	files = append(files, partials...)
	return template.New("layout.html").Funcs(Funcs(nil)).ParseFiles(files...)
}

// Render executes the page name (e.g. "cart.html") inside the layout.
// Year, IsLoggedIn, UserID and the pending flash message are injected into
// data unless already present.
func Render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) error {
	return RenderStatus(w, r, http.StatusOK, name, data)
}

// RenderStatus is Render with an explicit status code.
func RenderStatus(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) error {
	if baseDir == "" {
		once.Do(detectBase)
	}
	if data == nil {
		data = map[string]any{}
	}
	if _, ok := data["Year"]; !ok {
		data["Year"] = time.Now().Year()
	}
	uid, loggedIn := auth.UserIDFromContext(r.Context())
	if _, ok := data["IsLoggedIn"]; !ok {
		data["IsLoggedIn"] = loggedIn
	}
	if _, ok := data["UserID"]; !ok {
		data["UserID"] = uid
	}
	if _, ok := data["Flash"]; !ok {
		if f, ok := httpx.PopFlash(w, r); ok {
			data["Flash"] = f
		}
	}

	tplCache.RLock()
	t, ok := tplCache.m[name]
	tplCache.RUnlock()
	if !ok || devMode() {
		var err error
		if t, err = parse(name); err != nil {
			return err
		}
		if !devMode() {
			tplCache.Lock()
			tplCache.m[name] = t
			tplCache.Unlock()
		}
	}

	bound, err := t.Clone()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := bound.Funcs(Funcs(r)).Execute(&buf, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err = buf.WriteTo(w)
	return err
}
