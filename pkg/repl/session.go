package repl

import (
	"fmt"

	"github.com/duynguyendang/maya/pkg/attach"
	"github.com/duynguyendang/maya/pkg/extract"
)

// SessionContext keeps what the REPL needs between turns that the
// conversation history does not: the files of the last reply and
// attachments waiting for the next message.
type SessionContext struct {
	LastReply string
	Files     []extract.ExtractedFile
	Pending   []attach.Attachment
}

func NewSessionContext() *SessionContext {
	return &SessionContext{}
}

// UpdateContext records a reply and consumes the pending attachments.
func (s *SessionContext) UpdateContext(reply string, files []extract.ExtractedFile) {
	s.LastReply = reply
	s.Files = files
	s.Pending = nil
}

func (s *SessionContext) Attach(a attach.Attachment) {
	s.Pending = append(s.Pending, a)
}

func (s *SessionContext) Reset() {
	*s = SessionContext{}
}

// File returns the file at a 1-based index as shown by /files.
func (s *SessionContext) File(n int) (extract.ExtractedFile, error) {
	if len(s.Files) == 0 {
		return extract.ExtractedFile{}, fmt.Errorf("no files in the last reply")
	}
	if n < 1 || n > len(s.Files) {
		return extract.ExtractedFile{}, fmt.Errorf("file %d out of range (1-%d)", n, len(s.Files))
	}
	return s.Files[n-1], nil
}
