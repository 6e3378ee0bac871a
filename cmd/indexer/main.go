package main

import (
	"encoding/json"
	"flag"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"eirybot-assistant-be/pkg/knowledge"

	"github.com/fatih/color"
)

// Offline site indexer. Walks the marketing site's source tree, strips the
// code scaffolding around the copy, and writes the JSON index the retriever
// loads at boot. Run it whenever site content changes.

var (
	ignoreDirs  = map[string]bool{"api": true, "fonts": true, "node_modules": true}
	ignoreFiles = map[string]bool{
		"layout.tsx":      true,
		"loading.tsx":     true,
		"error.tsx":       true,
		"not-found.tsx":   true,
		"page.module.css": true,
	}

	importRe      = regexp.MustCompile(`import .* from .*`)
	importBlockRe = regexp.MustCompile(`(?s)import\s*\{[^}]*\}\s*from\s*['"].*?['"];?`)
	exportRe      = regexp.MustCompile(`export .* \{`)
	exportFuncRe  = regexp.MustCompile(`export default function .*`)
	useClientRe   = regexp.MustCompile(`'use client';`)
	consoleLogRe  = regexp.MustCompile(`console\.log\(.*\);`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
)

// minFileSize skips files that are scaffolding rather than content.
const minFileSize = 100

type indexFile struct {
	Pages     []knowledge.Page `json:"pages"`
	Timestamp string           `json:"timestamp"`
}

func main() {
	srcDir := flag.String("src", "src/app", "site source directory to index")
	publicDir := flag.String("public", "public", "directory of standalone docs (.md, .txt)")
	outPath := flag.String("out", "data/site_knowledge.json", "output path for the JSON index")
	flag.Parse()

	color.Cyan("Indexing site content from %s...", *srcDir)

	out := indexFile{
		Pages:     []knowledge.Page{},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	err := filepath.WalkDir(*srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if ignoreDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if ignoreFiles[d.Name()] || !indexable(d.Name()) {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if len(content) < minFileSize {
			return nil
		}

		out.Pages = append(out.Pages, knowledge.Page{
			Path:    filepath.ToSlash(path),
			Content: cleanContent(string(content)),
		})
		color.Green("Indexed: %s", path)
		return nil
	})
	if err != nil {
		log.Fatalf("walk %s: %v", *srcDir, err)
	}

	indexPublicDocs(*publicDir, &out)

	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		log.Fatalf("create output directory: %v", err)
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		log.Fatalf("marshal index: %v", err)
	}
	if err := os.WriteFile(*outPath, data, 0o644); err != nil {
		log.Fatalf("write %s: %v", *outPath, err)
	}

	color.Cyan("Successfully wrote %d pages to %s", len(out.Pages), *outPath)
}

func indexable(name string) bool {
	return strings.HasSuffix(name, ".tsx") ||
		strings.HasSuffix(name, ".md") ||
		strings.HasSuffix(name, ".mdx")
}

// indexPublicDocs picks up hand-written docs that live outside the source
// tree. These are indexed verbatim, whitespace collapsed.
func indexPublicDocs(dir string, out *indexFile) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || (!strings.HasSuffix(name, ".md") && !strings.HasSuffix(name, ".txt")) {
			continue
		}
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Printf("skip %s: %v", name, err)
			continue
		}
		out.Pages = append(out.Pages, knowledge.Page{
			Path:    "public/" + name,
			Content: collapseWhitespace(string(content)),
		})
		color.Green("Indexed public file: %s", name)
	}
}

// cleanContent strips the code around the copy so only readable text is
// scored at query time.
func cleanContent(content string) string {
	cleaned := importRe.ReplaceAllString(content, "")
	cleaned = importBlockRe.ReplaceAllString(cleaned, "")
	cleaned = exportRe.ReplaceAllString(cleaned, "")
	cleaned = exportFuncRe.ReplaceAllString(cleaned, "")
	cleaned = useClientRe.ReplaceAllString(cleaned, "")
	cleaned = consoleLogRe.ReplaceAllString(cleaned, "")
	return collapseWhitespace(cleaned)
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
