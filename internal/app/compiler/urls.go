package compiler

import (
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"lesswatch/internal/config"
)

var urlPattern = regexp.MustCompile(`url\(\s*(["']?)([^"')]+)(["']?)\s*\)`)

// urlRewriter applies rewriteUrls, rootpath and urlArgs to url() references
type urlRewriter struct {
	mode     string
	entryDir string
	rootpath string
	args     string
}

func newURLRewriter(opts config.Less) urlRewriter {
	return urlRewriter{
		mode:     opts.RewriteURLs,
		entryDir: filepath.Dir(opts.Filename),
		rootpath: opts.Rootpath,
		args:     opts.URLArgs,
	}
}

func (r urlRewriter) active() bool {
	return r.rootpath != "" || r.args != "" || r.mode == config.RewriteUrlsAll || r.mode == config.RewriteUrlsLocal
}

// rewrite processes every url() found in text, file is the stylesheet the text came from
func (r urlRewriter) rewrite(text, file string) string {
	if !r.active() {
		return text
	}

	return urlPattern.ReplaceAllStringFunc(text, func(m string) string {
		sub := urlPattern.FindStringSubmatch(m)
		if sub[1] != sub[3] {
			return m
		}

		return "url(" + sub[1] + r.url(strings.TrimSpace(sub[2]), file) + sub[3] + ")"
	})
}

func (r urlRewriter) url(u, file string) string {
	lower := strings.ToLower(u)
	if strings.HasPrefix(lower, "data:") || strings.HasPrefix(u, "#") {
		return u
	}

	if !isAbsoluteURL(u) {
		if file != "" && r.rewrites(u) {
			if dir, err := filepath.Rel(r.entryDir, filepath.Dir(file)); err == nil && dir != "." {
				joined := path.Join(filepath.ToSlash(dir), u)

				if strings.HasPrefix(u, "./") && !strings.HasPrefix(joined, ".") {
					joined = "./" + joined
				}

				u = joined
			}
		}

		u = r.rootpath + u
	}

	if r.args != "" {
		u = appendArgs(u, r.args)
	}

	return u
}

func (r urlRewriter) rewrites(u string) bool {
	switch r.mode {
	case config.RewriteUrlsAll:
		return true
	case config.RewriteUrlsLocal:
		return strings.HasPrefix(u, "./") || strings.HasPrefix(u, "../")
	default:
		return false
	}
}

// appendArgs adds query arguments before any fragment
func appendArgs(u, args string) string {
	fragment := ""
	if idx := strings.IndexByte(u, '#'); idx >= 0 {
		u, fragment = u[:idx], u[idx:]
	}

	sep := "?"
	if strings.Contains(u, "?") {
		sep = "&"
	}

	return u + sep + args + fragment
}

func isAbsoluteURL(u string) bool {
	if strings.HasPrefix(u, "/") || strings.Contains(u, "@{") {
		return true
	}

	if idx := strings.Index(u, ":"); idx > 0 {
		return !strings.ContainsAny(u[:idx], "/.?#")
	}

	return false
}
