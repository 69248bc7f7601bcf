// Package model defines domain records persisted in the path store.
//
// Field tags match the store's wire layout: records are JSON objects at
// entity paths, with collection-valued state (participants, found artifacts,
// team members) living in sub-paths rather than inside the record.
package model

// User is the account record stored at users/{id}. Per-session state lives
// under users/{id}/sessionsJoined/{sessionId}; the current-session pointer
// under users/{id}/currentSession.
type User struct {
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	IsAdmin     bool   `json:"isAdmin"`
	CreatedAt   int64  `json:"createdAt"` // unix millis
	UpdatedAt   int64  `json:"updatedAt"` // unix millis
}

// Session is the game-instance record stored at sessions/{id}.
type Session struct {
	SessionName string    `json:"sessionName"`
	CreatorID   string    `json:"creatorId"`
	StartTime   int64     `json:"startTime"`
	EndTime     int64     `json:"endTime"`
	GameState   GameState `json:"gameState"`
}

// LegacySession is the first-generation session record. It predates the game
// state machine and carries a plain active flag plus a team registry under
// sessions/{id}/teams.
type LegacySession struct {
	SessionName string `json:"sessionName"`
	CreatorID   string `json:"creatorId"`
	StartTime   int64  `json:"startTime"`
	EndTime     int64  `json:"endTime"`
	IsActive    bool   `json:"isActive"`
}

// Artifact is a discoverable in-game object stored at artifacts/{id}.
type Artifact struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	LocationHint string  `json:"locationHint"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	IsChallenge  bool    `json:"isChallenge"`
	ImageURL     string  `json:"imageUrl,omitempty"`
	AudioURL     string  `json:"audioUrl,omitempty"`
}

// Team is the first-generation grouping record stored at teams/{id}.
// SessionID is empty until the team is attached to a session; members live
// under teams/{id}/members.
type Team struct {
	SessionID string `json:"sessionId"`
	TeamName  string `json:"teamName"`
}

// Membership is the first-generation per-session record stored at
// users/{userId}/sessionsJoined/{sessionId}. Scoring and discovery
// bookkeeping is user-owned in this generation.
type Membership struct {
	Points         int64           `json:"points"`
	FoundArtifacts map[string]bool `json:"foundArtifacts"`
	LocationsFound map[string]bool `json:"locationsFound"`
	TeamID         string          `json:"teamId,omitempty"`
}

// Participant is the second-generation per-user record stored at
// sessions/{sessionId}/participants/{userId}. Scoring and discovery
// bookkeeping is session-owned in this generation.
type Participant struct {
	Points         int64           `json:"points"`
	FoundArtifacts map[string]bool `json:"foundArtifacts"`
	FoundLocations map[string]bool `json:"foundLocations"`
}

// NewMembership returns a blank first-generation membership record.
func NewMembership() Membership {
	return Membership{
		FoundArtifacts: map[string]bool{},
		LocationsFound: map[string]bool{},
	}
}

// NewParticipant returns a blank second-generation participant record.
func NewParticipant() Participant {
	return Participant{
		FoundArtifacts: map[string]bool{},
		FoundLocations: map[string]bool{},
	}
}
