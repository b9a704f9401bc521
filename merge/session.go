package merge

import (
	"sync"
	"time"

	"github.com/barrosyan/sistema-pronto/tabular"
)

type Step string

const (
	StepUpload    Step = "upload"
	StepConfigure Step = "configure"
	StepPreview   Step = "preview"
	StepExport    Step = "export"
)

// PreviewRows is how many merged rows a preview shows.
const PreviewRows = 10

// Ticket pins the session state a merge was computed from.
type Ticket struct {
	Generation  uint64
	Main        *tabular.ParsedFile
	Secondaries []*tabular.ParsedFile
	Options     Options
}

type Snapshot struct {
	Generation uint64                `json:"generation"`
	Step       Step                  `json:"step"`
	Files      []*tabular.ParsedFile `json:"-"`
	MainIndex  int                   `json:"mainIndex"`
	Options    Options               `json:"options"`
	Result     *Result               `json:"-"`
	UpdatedAt  time.Time             `json:"updatedAt"`
}

// Session holds the merge wizard state of one user. The file slice is replaced
// wholesale on every change so tickets keep seeing the files they captured.
type Session struct {
	mu         sync.Mutex
	files      []*tabular.ParsedFile
	generation uint64
	step       Step
	mainIndex  int
	options    Options
	result     *Result
	updatedAt  time.Time
}

func NewSession() *Session {
	return &Session{step: StepUpload, options: Options{Strategy: DefaultStrategy}, updatedAt: time.Now()}
}

// touch must be called with mu held.
func (s *Session) touch(step Step) uint64 {
	s.generation++
	s.step = step
	s.result = nil
	s.updatedAt = time.Now()
	return s.generation
}

func (s *Session) AddFiles(files ...*tabular.ParsedFile) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]*tabular.ParsedFile, 0, len(s.files)+len(files))
	next = append(next, s.files...)
	next = append(next, files...)
	s.files = next
	return s.touch(StepUpload)
}

func (s *Session) RemoveFile(index int) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.files) {
		return s.generation, ErrFileIndex
	}
	next := make([]*tabular.ParsedFile, 0, len(s.files)-1)
	next = append(next, s.files[:index]...)
	next = append(next, s.files[index+1:]...)
	s.files = next
	switch {
	case s.mainIndex == index:
		s.mainIndex = 0
	case s.mainIndex > index:
		s.mainIndex--
	}
	return s.touch(StepUpload), nil
}

func (s *Session) Configure(mainIndex int, opts Options) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if mainIndex < 0 || mainIndex >= len(s.files) {
		return s.generation, ErrFileIndex
	}
	if opts.Strategy == "" {
		opts.Strategy = DefaultStrategy
	}
	s.mainIndex = mainIndex
	s.options = opts
	return s.touch(StepConfigure), nil
}

// Begin captures the current files and configuration for a merge.
func (s *Session) Begin() (Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.files) < 2 {
		return Ticket{}, ErrNotEnoughFiles
	}
	return Ticket{
		Generation:  s.generation,
		Main:        s.files[s.mainIndex],
		Secondaries: Secondaries(s.files, s.mainIndex),
		Options:     s.options,
	}, nil
}

// Commit stores a merge result unless the session moved on since the ticket was taken.
func (s *Session) Commit(t Ticket, result *Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.Generation != s.generation {
		return ErrStaleResult
	}
	s.result = result
	s.step = StepPreview
	s.updatedAt = time.Now()
	return nil
}

// Preview runs the join outside the lock and commits it.
func (s *Session) Preview() (*Result, error) {
	t, err := s.Begin()
	if err != nil {
		return nil, err
	}
	result, err := LeftJoin(t.Main, t.Secondaries, t.Options)
	if err != nil {
		return nil, err
	}
	if err := s.Commit(t, result); err != nil {
		return nil, err
	}
	return result, nil
}

// Confirm moves a previewed merge to the export step.
func (s *Session) Confirm() (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return nil, ErrNoResult
	}
	s.step = StepExport
	s.updatedAt = time.Now()
	return s.result, nil
}

// Exportable returns the confirmed merge result.
func (s *Session) Exportable() (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return nil, ErrNoResult
	}
	if s.step != StepExport {
		return nil, ErrNotConfirmed
	}
	return s.result, nil
}

func (s *Session) Result() (*Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result, s.result != nil
}

func (s *Session) Files() []*tabular.ParsedFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.files
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Generation: s.generation,
		Step:       s.step,
		Files:      s.files,
		MainIndex:  s.mainIndex,
		Options:    s.options,
		Result:     s.result,
		UpdatedAt:  s.updatedAt,
	}
}

// Reset discards files and results. The generation keeps increasing.
func (s *Session) Reset() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = nil
	s.mainIndex = 0
	s.options = Options{Strategy: DefaultStrategy}
	return s.touch(StepUpload)
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

// SessionStore keeps one Session per owner.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{sessions: map[string]*Session{}, ttl: ttl}
}

func (st *SessionStore) Get(owner string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[owner]
	if !ok {
		s = NewSession()
		st.sessions[owner] = s
	}
	return s
}

// Sweep drops sessions idle for longer than the store ttl and reports how many went.
func (st *SessionStore) Sweep(now time.Time) int {
	if st.ttl <= 0 {
		return 0
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	n := 0
	for owner, s := range st.sessions {
		if now.Sub(s.idleSince()) > st.ttl {
			delete(st.sessions, owner)
			n++
		}
	}
	return n
}

func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
