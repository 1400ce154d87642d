// Package clipboard copies extracted file contents to the system clipboard.
package clipboard

import (
	"errors"
	"fmt"
	"sync"

	"golang.design/x/clipboard"
)

// ErrClipboard is returned when the system clipboard cannot be used.
var ErrClipboard = errors.New("clipboard unavailable")

// Service copies text to the clipboard, initializing it on first use.
type Service struct {
	mu       sync.Mutex
	initOnce sync.Once
	initErr  error

	initFn  func() error
	writeFn func([]byte)
}

func NewService() *Service {
	return &Service{
		initFn:  clipboard.Init,
		writeFn: func(b []byte) { clipboard.Write(clipboard.FmtText, b) },
	}
}

func (s *Service) init() error {
	s.initOnce.Do(func() {
		if err := s.initFn(); err != nil {
			s.initErr = fmt.Errorf("%w: %v", ErrClipboard, err)
		}
	})
	return s.initErr
}

// Copy places text on the clipboard.
func (s *Service) Copy(text string) error {
	if err := s.init(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeFn([]byte(text))
	return nil
}
