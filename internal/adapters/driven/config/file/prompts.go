package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/bidflow/internal/core/ports/driven"
	"github.com/custodia-labs/bidflow/internal/logger"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptExt is the extension of override files: <dir>/<stage id>.txt.
const PromptExt = ".txt"

// PromptStore serves stage template overrides from user-editable files.
// A stage without a file, or with an empty one, keeps its built-in template.
//
// Lookups are cached, negative results included, until Reload.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]cachedPrompt
	initOnce  sync.Once
}

type cachedPrompt struct {
	text string
	ok   bool
}

// NewPromptStore creates a file-based prompt store.
// If promptDir is empty, defaults to ~/.bidflow/prompts/.
//
// The constructor performs no I/O; the directory and its README are
// created on the first Load.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		dir, err := DefaultConfigDir()
		if err != nil {
			return nil, err
		}
		promptDir = filepath.Join(dir, "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]cachedPrompt),
	}, nil
}

// Load returns the override template for the named stage.
func (s *PromptStore) Load(name string) (string, bool) {
	s.initOnce.Do(s.initialise)

	s.mu.RLock()
	if p, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return p.text, p.ok
	}
	s.mu.RUnlock()

	p := s.loadFromFile(name)

	s.mu.Lock()
	if existing, ok := s.cache[name]; ok {
		p = existing
	} else {
		s.cache[name] = p
	}
	s.mu.Unlock()

	return p.text, p.ok
}

// Reload clears the cache, forcing fresh reads on next access.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]cachedPrompt)
	s.mu.Unlock()
	logger.Debug("Prompt overrides reloaded from %s", s.promptDir)
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// Path returns the override file path for a stage.
func (s *PromptStore) Path(name string) string {
	return filepath.Join(s.promptDir, name+PromptExt)
}

func (s *PromptStore) loadFromFile(name string) cachedPrompt {
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warnw("cannot read prompt override, using built-in", "stage", name, "error", err)
		}
		return cachedPrompt{}
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return cachedPrompt{}
	}
	logger.Debug("Loaded prompt override %s", s.Path(name))
	return cachedPrompt{text: text, ok: true}
}

// initialise creates the prompt directory and a README describing it.
// Failure only costs the README; Load still works.
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		logger.Debug("Cannot create prompt directory: %v", err)
		return
	}
	if err := s.createReadme(); err != nil {
		logger.Debug("Cannot write prompt README: %v", err)
	}
}

// createReadme writes README.md unless one exists.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		return nil
	}

	content := `# BidFlow Prompts

Drop a file named after a stage to replace its built-in prompt template:

- ` + "`requirements.txt`" + ` - requirement extraction
- ` + "`audit.txt`" + ` - compliance audit against the business profile
- ` + "`synthesis.txt`" + ` - final proposal writing

Templates use Go text/template syntax:

- ` + "`{{.Document}}`" + ` - the document excerpt
- ` + "`{{.Profile}}`" + ` - the business profile
- ` + "`{{.Inputs.audit}}`" + ` - output of an upstream stage the stage requires

A template that references an input its stage does not require is rejected
when the pipeline is built. Empty files are ignored.
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("write prompt README: %w", err)
	}
	return nil
}
