package knowledge

import (
	"encoding/json"
	"fmt"
	"os"
)

// Page is one pre-indexed document produced by cmd/indexer.
type Page struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

type siteIndexFile struct {
	Pages     []Page `json:"pages"`
	Timestamp string `json:"timestamp"`
}

// SiteKnowledge holds everything the retriever scores: the indexed site
// pages plus the translation dictionary, whose serialized form doubles as
// the always-present "main content" dump.
type SiteKnowledge struct {
	Pages           []Page
	mainContentDump string
}

// Load reads the offline index and the translation dictionary from disk.
func Load(siteIndexPath, messagesPath string) (*SiteKnowledge, error) {
	indexData, err := os.ReadFile(siteIndexPath)
	if err != nil {
		return nil, fmt.Errorf("read site index: %w", err)
	}
	var index siteIndexFile
	if err := json.Unmarshal(indexData, &index); err != nil {
		return nil, fmt.Errorf("parse site index: %w", err)
	}

	messagesData, err := os.ReadFile(messagesPath)
	if err != nil {
		return nil, fmt.Errorf("read messages: %w", err)
	}
	var messages map[string]interface{}
	if err := json.Unmarshal(messagesData, &messages); err != nil {
		return nil, fmt.Errorf("parse messages: %w", err)
	}

	return New(index.Pages, messages), nil
}

// New builds the knowledge set from already-parsed data. Exposed for tests.
func New(pages []Page, messages map[string]interface{}) *SiteKnowledge {
	serialized, err := json.MarshalIndent(messages, "", "  ")
	if err != nil {
		serialized = []byte("{}")
	}
	return &SiteKnowledge{
		Pages:           pages,
		mainContentDump: "\n## Main Messages (i18n):\n" + string(serialized) + "\n",
	}
}

// MainContentDump is the serialized translation dictionary, returned verbatim
// for empty queries and prepended to every scored context.
func (k *SiteKnowledge) MainContentDump() string {
	return k.mainContentDump
}
