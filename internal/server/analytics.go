package server

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/goliatone/go-blog/internal/site"
)

// Analytics injects the provider tracking snippet into HTML responses. The
// snippet is placed immediately before the closing body tag; non-HTML
// responses pass through untouched.
func Analytics(cfg site.Analytics) Middleware {
	snippet := AnalyticsSnippet(cfg)
	return func(next http.Handler) http.Handler {
		if snippet == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			injector := &snippetInjector{ResponseWriter: w, snippet: snippet}
			next.ServeHTTP(injector, r)
			injector.flush()
		})
	}
}

// AnalyticsSnippet renders the script tag for the configured provider. The
// static generator embeds the same markup so built pages and served pages
// track identically.
func AnalyticsSnippet(cfg site.Analytics) string {
	id := strings.TrimSpace(cfg.TrackingID)
	if id == "" {
		return ""
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case site.AnalyticsProviderPlausible:
		return fmt.Sprintf(`<script defer data-domain="%s" src="https://plausible.io/js/script.js"></script>`, id)
	case site.AnalyticsProviderGoatCounter:
		return fmt.Sprintf(`<script data-goatcounter="https://%s.goatcounter.com/count" async src="//gc.zgo.at/count.js"></script>`, id)
	default:
		return fmt.Sprintf(`<script async src="https://www.googletagmanager.com/gtag/js?id=%s"></script>
<script>window.dataLayer=window.dataLayer||[];function gtag(){dataLayer.push(arguments);}gtag('js',new Date());gtag('config','%s');</script>`, id, id)
	}
}

// snippetInjector buffers HTML bodies so the snippet can be spliced in before
// the response is flushed. Anything without a text/html content type streams
// straight through.
type snippetInjector struct {
	http.ResponseWriter
	snippet     string
	status      int
	buf         bytes.Buffer
	buffering   bool
	decided     bool
	wroteHeader bool
}

func (s *snippetInjector) WriteHeader(status int) {
	s.status = status
	s.decide()
	if !s.buffering {
		s.ResponseWriter.WriteHeader(status)
		s.wroteHeader = true
	}
}

func (s *snippetInjector) Write(data []byte) (int, error) {
	s.decide()
	if s.buffering {
		return s.buf.Write(data)
	}
	if !s.wroteHeader && s.status != 0 {
		s.ResponseWriter.WriteHeader(s.status)
		s.wroteHeader = true
	}
	return s.ResponseWriter.Write(data)
}

func (s *snippetInjector) decide() {
	if s.decided {
		return
	}
	s.decided = true
	contentType := s.Header().Get("Content-Type")
	s.buffering = contentType == "" || strings.Contains(contentType, "text/html")
}

func (s *snippetInjector) flush() {
	if !s.buffering {
		return
	}

	body := InjectSnippet(s.buf.Bytes(), s.snippet)
	s.Header().Set("Content-Length", strconv.Itoa(len(body)))
	if s.status != 0 {
		s.ResponseWriter.WriteHeader(s.status)
	}
	s.ResponseWriter.Write(body)
}

// InjectSnippet splices the snippet before the closing body tag. Bodies
// without one get the snippet appended so tracking still loads.
func InjectSnippet(body []byte, snippet string) []byte {
	if snippet == "" || len(body) == 0 {
		return body
	}

	marker := []byte("</body>")
	idx := bytes.LastIndex(body, marker)
	if idx < 0 {
		return append(body, []byte("\n"+snippet+"\n")...)
	}

	out := make([]byte, 0, len(body)+len(snippet)+1)
	out = append(out, body[:idx]...)
	out = append(out, []byte(snippet+"\n")...)
	out = append(out, body[idx:]...)
	return out
}
