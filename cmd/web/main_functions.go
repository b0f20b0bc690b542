package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/go-while/go-paradigmas/internal/content"
	"github.com/go-while/go-paradigmas/internal/models"
	json "github.com/goccy/go-json"
	"golang.org/x/term"
)

// contentExport is the JSON document written by --export-content
type contentExport struct {
	Version    string                  `json:"version"`
	Cover      models.Cover            `json:"cover"`
	Routes     []string                `json:"routes"`
	Navigation []*models.NavSection    `json:"navigation"`
	Pages      map[string]*models.Page `json:"pages"`
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// printRoutes lists content routes. A terminal gets an aligned table with
// page titles, pipes get one route per line.
func printRoutes(out *os.File, store *content.Store) {
	routes := content.AllRoutes()
	if !isTerminal(out) {
		fmt.Fprintln(out, strings.Join(routes, "\n"))
		return
	}

	width := 80
	if w, _, err := term.GetSize(int(out.Fd())); err == nil && w > 0 {
		width = w
	}
	writeRouteTable(out, store, routes, width)
}

func writeRouteTable(out io.Writer, store *content.Store, routes []string, width int) {
	pathWidth := 0
	for _, r := range routes {
		if len(r) > pathWidth {
			pathWidth = len(r)
		}
	}
	for _, r := range routes {
		title := store.Cover().Title
		if page, ok := store.ByPath(r); ok {
			title = page.Title
		}
		line := fmt.Sprintf("%-*s  %s", pathWidth, r, title)
		if len([]rune(line)) > width {
			line = string([]rune(line)[:width-1]) + "…"
		}
		fmt.Fprintln(out, line)
	}
}

// writeContentExport writes every page as JSON to path, or stdout for "-"
func writeContentExport(path string, store *content.Store) error {
	export := contentExport{
		Version:    appVersion,
		Cover:      store.Cover(),
		Routes:     content.AllRoutes(),
		Navigation: store.Navigation(),
		Pages:      make(map[string]*models.Page),
	}
	for _, page := range store.Pages() {
		export.Pages[page.Path] = page
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode content: %w", err)
	}
	data = append(data, '\n')

	if path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	log.Printf("[CONTENT]: Exported %d pages to %s", len(export.Pages), path)
	return nil
}

// monitorUpdateFile checks for the existence of an .update file every 60 seconds
// and signals for shutdown when found, then renames the file
func monitorUpdateFile(shutdownChan chan<- bool) {
	updateFilePath := ".update"
	ticker := time.NewTicker(60 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		if _, err := os.Stat(updateFilePath); err != nil {
			continue
		}
		log.Printf("[WEB]: Update file '%s' detected, triggering graceful shutdown", updateFilePath)
		if err := os.Rename(updateFilePath, updateFilePath+".todo"); err != nil {
			log.Printf("[WEB]: Warning: Failed to rename update file '%s': %v", updateFilePath, err)
			continue
		}
		select {
		case shutdownChan <- true:
		default:
		}
		return
	}
}
