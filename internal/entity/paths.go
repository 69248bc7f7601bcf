package entity

import "github.com/and161185/geohunt/internal/pathstore"

// Top-level collections under the root namespace.
const (
	UsersCollection     = "users"
	SessionsCollection  = "sessions"
	TeamsCollection     = "teams"
	ArtifactsCollection = "artifacts"
)

// UserPath is users/{userId}.
func UserPath(userID string) string {
	return pathstore.Join(UsersCollection, userID)
}

// CurrentSessionPath is users/{userId}/currentSession.
func CurrentSessionPath(userID string) string {
	return pathstore.Join(UsersCollection, userID, "currentSession")
}

// MembershipsPath is users/{userId}/sessionsJoined.
func MembershipsPath(userID string) string {
	return pathstore.Join(UsersCollection, userID, "sessionsJoined")
}

// MembershipPath is users/{userId}/sessionsJoined/{sessionId}.
func MembershipPath(userID, sessionID string) string {
	return pathstore.Join(UsersCollection, userID, "sessionsJoined", sessionID)
}

// SessionPath is sessions/{sessionId}.
func SessionPath(sessionID string) string {
	return pathstore.Join(SessionsCollection, sessionID)
}

// ParticipantsPath is sessions/{sessionId}/participants.
func ParticipantsPath(sessionID string) string {
	return pathstore.Join(SessionsCollection, sessionID, "participants")
}

// ParticipantPath is sessions/{sessionId}/participants/{userId}.
func ParticipantPath(sessionID, userID string) string {
	return pathstore.Join(SessionsCollection, sessionID, "participants", userID)
}

// SessionArtifactsPath is sessions/{sessionId}/artifacts.
func SessionArtifactsPath(sessionID string) string {
	return pathstore.Join(SessionsCollection, sessionID, "artifacts")
}

// SessionArtifactPath is sessions/{sessionId}/artifacts/{artifactId}.
func SessionArtifactPath(sessionID, artifactID string) string {
	return pathstore.Join(SessionsCollection, sessionID, "artifacts", artifactID)
}

// SessionTeamsPath is sessions/{sessionId}/teams (first generation only).
func SessionTeamsPath(sessionID string) string {
	return pathstore.Join(SessionsCollection, sessionID, "teams")
}

// SessionTeamPath is sessions/{sessionId}/teams/{teamId} (first generation only).
func SessionTeamPath(sessionID, teamID string) string {
	return pathstore.Join(SessionsCollection, sessionID, "teams", teamID)
}

// TeamPath is teams/{teamId} (first generation only).
func TeamPath(teamID string) string {
	return pathstore.Join(TeamsCollection, teamID)
}

// TeamMembersPath is teams/{teamId}/members (first generation only).
func TeamMembersPath(teamID string) string {
	return pathstore.Join(TeamsCollection, teamID, "members")
}

// TeamMemberPath is teams/{teamId}/members/{userId} (first generation only).
func TeamMemberPath(teamID, userID string) string {
	return pathstore.Join(TeamsCollection, teamID, "members", userID)
}

// ArtifactPath is artifacts/{artifactId}.
func ArtifactPath(artifactID string) string {
	return pathstore.Join(ArtifactsCollection, artifactID)
}
