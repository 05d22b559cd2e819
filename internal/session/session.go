package session

// DefaultScrollThreshold is the distance from the bottom of the message view
// inside which auto-scroll stays engaged.
const DefaultScrollThreshold = 100

// ViewPhase is the lifecycle of the transcript for the active conversation.
type ViewPhase int

const (
	// ViewEmpty means no transcript content is present.
	ViewEmpty ViewPhase = iota
	// ViewLoading means a history fetch for the active conversation is in flight.
	ViewLoading
	// ViewPopulated means the transcript holds at least the loaded history.
	ViewPopulated
)

// Viewport reports the scroll position of the message view. The session reads
// it before appending a message; appending changes the scroll height, so the
// read must happen first.
type Viewport interface {
	// DistanceFromBottom returns how far the view is scrolled away from the
	// bottom, in the view's own units. Zero means pinned to the newest message.
	DistanceFromBottom() int
}

// pinnedViewport is the fallback when no viewport is wired: always at bottom.
type pinnedViewport struct{}

func (pinnedViewport) DistanceFromBottom() int { return 0 }

// Session is the single owned record of client state: identity, active
// conversation, known rooms and users, unseen flags, and the transcript.
// It is written from exactly one goroutine (the client event loop) and is
// safe by construction of single-threaded access, not by locking.
type Session struct {
	identity     string
	active       ConversationRef
	rooms        []string
	roomIndex    map[string]struct{}
	roster       []string
	participants []string
	unseen       map[string]bool
	transcript   []ChatMessage
	phase        ViewPhase
	fetchGen     uint64

	viewport        Viewport
	scrollThreshold int
}

// New builds an empty session. A nil viewport behaves as pinned to the bottom;
// a non-positive threshold falls back to DefaultScrollThreshold.
func New(viewport Viewport, scrollThreshold int) *Session {
	if viewport == nil {
		viewport = pinnedViewport{}
	}
	if scrollThreshold <= 0 {
		scrollThreshold = DefaultScrollThreshold
	}
	return &Session{
		roomIndex:       make(map[string]struct{}),
		unseen:          make(map[string]bool),
		viewport:        viewport,
		scrollThreshold: scrollThreshold,
	}
}

// Register assigns the identity. It fails once an identity is set.
func (s *Session) Register(identity string) error {
	if identity == "" {
		return ErrEmptyName
	}
	if s.identity != "" {
		return ErrAlreadyRegistered
	}
	s.identity = identity
	return nil
}

// Identity returns the registered display name, empty before registration.
func (s *Session) Identity() string { return s.identity }

// Registered reports whether the identity has been assigned.
func (s *Session) Registered() bool { return s.identity != "" }

// Active returns the active conversation selector.
func (s *Session) Active() ConversationRef { return s.active }

// SetActiveConversation switches the active conversation. The previous
// transcript is discarded, never cached. Opening a direct chat clears that
// peer's unseen flag. Any in-flight history fetch for the previous target is
// invalidated by bumping the fetch generation.
func (s *Session) SetActiveConversation(ref ConversationRef) []Change {
	var changes []Change

	if ref.IsRoom() {
		if s.UpsertRoom(ref.Target) {
			changes = append(changes, Change{Kind: ChangeRoomDiscovered, Room: ref.Target})
		}
	}

	s.active = ref
	s.transcript = nil
	s.participants = nil
	s.phase = ViewEmpty
	s.fetchGen++

	changes = append(changes, Change{Kind: ChangeConversationOpened, Conversation: ref})

	if ref.IsDirect() && s.unseen[ref.Target] {
		delete(s.unseen, ref.Target)
		changes = append(changes, Change{Kind: ChangeUnseenCleared, Peer: ref.Target})
	}

	return changes
}

// UpsertRoom adds a room name to the known set, preserving discovery order.
// Returns true if the name was new.
func (s *Session) UpsertRoom(name string) bool {
	if name == "" {
		return false
	}
	if _, ok := s.roomIndex[name]; ok {
		return false
	}
	s.roomIndex[name] = struct{}{}
	s.rooms = append(s.rooms, name)
	return true
}

// Rooms returns the known room names in discovery order.
func (s *Session) Rooms() []string {
	return cloneNames(s.rooms)
}

// ReplaceRoster replaces the online-user set wholesale, filtering out the
// session identity. Snapshots are last-writer-wins, never merged.
func (s *Session) ReplaceRoster(names []string) {
	s.roster = s.roster[:0]
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n == "" || n == s.identity {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		s.roster = append(s.roster, n)
	}
}

// Roster returns the online users, excluding self.
func (s *Session) Roster() []string {
	return cloneNames(s.roster)
}

// ReplaceParticipants replaces the active-room participant set wholesale.
// Unlike the roster, self stays in the list.
func (s *Session) ReplaceParticipants(names []string) {
	s.participants = cloneNames(names)
}

// Participants returns the users in the active room.
func (s *Session) Participants() []string {
	return cloneNames(s.participants)
}

// RecordUnseen flags a private message from peer as unseen, unless that
// peer's chat is the active conversation. Returns true if the flag was set.
func (s *Session) RecordUnseen(peer string) bool {
	if peer == "" || s.active.Equal(DirectRef(peer)) {
		return false
	}
	s.unseen[peer] = true
	return true
}

// HasUnseen reports whether peer has an unseen private message.
func (s *Session) HasUnseen(peer string) bool {
	return s.unseen[peer]
}

// UnseenPeers returns the peers with unseen private messages.
func (s *Session) UnseenPeers() []string {
	peers := make([]string, 0, len(s.unseen))
	for p := range s.unseen {
		peers = append(peers, p)
	}
	return peers
}

// Transcript returns the messages of the active conversation in arrival order.
func (s *Session) Transcript() []ChatMessage {
	out := make([]ChatMessage, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Phase returns the transcript lifecycle phase for the active conversation.
func (s *Session) Phase() ViewPhase { return s.phase }

func cloneNames(names []string) []string {
	out := make([]string, len(names))
	copy(out, names)
	return out
}
