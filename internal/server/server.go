// Package server runs a small audition HTTP server for listening to
// rendered files from a browser.
package server

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/patrickmn/go-cache"

	"github.com/tphakala/rave-go/internal/audiofile"
	"github.com/tphakala/rave-go/internal/conf"
	"github.com/tphakala/rave-go/internal/errors"
	"github.com/tphakala/rave-go/internal/logging"
	"github.com/tphakala/rave-go/internal/observability"
)

var (
	serviceLogger *slog.Logger
	initOnce      sync.Once
)

func getLogger() *slog.Logger {
	initOnce.Do(func() {
		serviceLogger = logging.ForService("server")
	})
	return serviceLogger
}

// Server serves rendered audio files over HTTP.
type Server struct {
	Echo     *echo.Echo
	Settings *conf.Settings

	audioDir   string
	probeCache *cache.Cache
}

// fileEntry is one row of the listing page.
type fileEntry struct {
	Name     string
	Size     int64
	Modified string
	Duration string
}

const listingTemplate = `<!DOCTYPE html>
<html>
<head><title>rave auditions</title></head>
<body>
<h1>Rendered audio</h1>
<table>
<tr><th>File</th><th>Duration</th><th>Size</th><th>Modified</th></tr>
{{range .}}
<tr>
<td><a href="/audio/{{.Name}}">{{.Name}}</a></td>
<td>{{.Duration}}</td>
<td>{{.Size}}</td>
<td>{{.Modified}}</td>
</tr>
{{end}}
</table>
<audio controls preload="none"></audio>
<script>
document.querySelectorAll('a[href^="/audio/"]').forEach(a => {
  a.addEventListener('click', e => {
    e.preventDefault();
    const player = document.querySelector('audio');
    player.src = a.href;
    player.play();
  });
});
</script>
</body>
</html>`

// New builds an audition server for the configured output directory.
func New(settings *conf.Settings) (*Server, error) {
	audioDir, err := conf.ExpandPath(settings.Transfer.OutputDir)
	if err != nil {
		return nil, err
	}

	ttl := time.Duration(settings.Server.CacheTTL) * time.Second
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	s := &Server{
		Echo:       echo.New(),
		Settings:   settings,
		audioDir:   audioDir,
		probeCache: cache.New(ttl, 2*ttl),
	}

	s.Echo.HideBanner = true
	s.Echo.HidePort = true
	s.Echo.Use(middleware.Recover())
	s.Echo.Use(middleware.Gzip())

	s.Echo.GET("/", s.handleListing)
	s.Echo.GET("/audio/:name", s.handleAudio)
	s.Echo.GET("/healthz", s.handleHealthz)
	s.Echo.GET("/metrics", echo.WrapHandler(observability.Handler()))

	return s, nil
}

// Start runs the server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		getLogger().Info("audition server listening",
			slog.String("address", s.Settings.Server.Listen),
			slog.String("audio_dir", s.audioDir))
		errChan <- s.Echo.Start(s.Settings.Server.Listen)
	}()

	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.New(err).
				Component("server").
				Category(errors.CategoryHTTP).
				Context("address", s.Settings.Server.Listen).
				Build()
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Echo.Shutdown(shutdownCtx)
	}
}

// handleListing renders the file table for the output directory.
func (s *Server) handleListing(c echo.Context) error {
	entries, err := s.listFiles()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list audio files")
	}

	tmpl, err := template.New("listing").Parse(listingTemplate)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "template error")
	}

	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return tmpl.Execute(c.Response(), entries)
}

// handleAudio streams one rendered file. echo's File handles range
// requests for seeking in the browser player.
func (s *Server) handleAudio(c echo.Context) error {
	name := c.Param("name")
	if !validAudioName(name) {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid file name")
	}

	path := filepath.Join(s.audioDir, name)
	if _, err := os.Stat(path); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "no such file")
	}

	c.Response().Header().Set(echo.HeaderContentType, "audio/wav")
	return c.File(path)
}

func (s *Server) handleHealthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// listFiles collects WAV entries from the output directory, using the
// probe cache to avoid re-reading headers on every page load.
func (s *Server) listFiles() ([]fileEntry, error) {
	dirEntries, err := os.ReadDir(s.audioDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var entries []fileEntry
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasSuffix(strings.ToLower(de.Name()), ".wav") {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}

		entries = append(entries, fileEntry{
			Name:     de.Name(),
			Size:     info.Size(),
			Modified: info.ModTime().Format(time.RFC3339),
			Duration: s.probeDuration(filepath.Join(s.audioDir, de.Name()), info.ModTime()),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Modified > entries[j].Modified
	})
	return entries, nil
}

// probeDuration returns a formatted duration for a file, cached per
// path and modification time.
func (s *Server) probeDuration(path string, modTime time.Time) string {
	key := path + "|" + modTime.Format(time.RFC3339Nano)
	if cached, found := s.probeCache.Get(key); found {
		if d, ok := cached.(string); ok {
			return d
		}
	}

	info, err := audiofile.Probe(path)
	if err != nil {
		return "?"
	}

	d := fmt.Sprintf("%.1fs", info.Duration())
	s.probeCache.Set(key, d, cache.DefaultExpiration)
	return d
}

// validAudioName rejects anything that could escape the audio
// directory.
func validAudioName(name string) bool {
	if name == "" || strings.Contains(name, "..") {
		return false
	}
	if strings.ContainsAny(name, "/\\") {
		return false
	}
	return strings.HasSuffix(strings.ToLower(name), ".wav")
}
