// Package hook decides what a verified webhook delivery should do:
// acknowledge it, ignore it, or hand it to the deployment dispatcher.
package hook

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/go-github/v57/github"

	"hookdeploy/internal/config"
)

// BranchRefPrefix is the git ref prefix carried by push events for branches.
const BranchRefPrefix = "refs/heads/"

// Kind classifies the outcome of routing a delivery.
type Kind int

const (
	// KindAcknowledge: respond 200, nothing to do (ping, unknown events).
	KindAcknowledge Kind = iota
	// KindIgnore: valid push that matches no deployment (wrong branch,
	// unmapped repository, non-branch ref). Still responds 200.
	KindIgnore
	// KindDeploy: hand the resolved target and context to the dispatcher.
	KindDeploy
)

// Context carries the fields derived from an accepted push. The dispatcher
// exports them into the deployment script's environment.
type Context struct {
	Repository     string // full name, "octo/widgets"
	RepositoryName string // short name, "widgets"
	Owner          string
	Branch         string
	Commit         string // head commit SHA
	Pusher         string
}

// Action is the routing decision for one delivery.
type Action struct {
	Kind    Kind
	Reason  string // operator-visible, returned in the response message
	Target  *config.Target
	Context Context
}

// Router inspects event type and payload against the immutable settings.
type Router struct {
	settings *config.Settings
}

// NewRouter creates a router over validated settings.
func NewRouter(settings *config.Settings) *Router {
	return &Router{settings: settings}
}

// Route decides the action for a delivery. The body must already be
// signature-verified and known to be well-formed JSON; Route only returns an
// error when a push payload cannot be decoded into the expected shape.
func (r *Router) Route(event string, body []byte) (Action, error) {
	switch event {
	case "ping":
		// GitHub's connectivity check. Always acknowledged, never deployed,
		// whatever the payload contains.
		return Action{Kind: KindAcknowledge, Reason: "pong"}, nil

	case "push":
		return r.routePush(body)

	default:
		// Unknown events are acknowledged so GitHub does not retry them.
		return Action{Kind: KindAcknowledge, Reason: fmt.Sprintf("event '%s' ignored", event)}, nil
	}
}

func (r *Router) routePush(body []byte) (Action, error) {
	var event github.PushEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return Action{}, fmt.Errorf("failed to parse push payload: %w", err)
	}

	ref := event.GetRef()
	if !strings.HasPrefix(ref, BranchRefPrefix) {
		// Tag pushes and other non-branch refs never deploy.
		return Action{Kind: KindIgnore, Reason: fmt.Sprintf("ref '%s' is not a branch", ref)}, nil
	}
	branch := strings.TrimPrefix(ref, BranchRefPrefix)

	if !r.settings.AllowsBranch(branch) {
		return Action{Kind: KindIgnore, Reason: fmt.Sprintf("branch '%s' not allowed", branch)}, nil
	}

	fullName := event.GetRepo().GetFullName()
	target, ok := r.settings.ResolveTarget(fullName)
	if !ok {
		return Action{Kind: KindIgnore, Reason: fmt.Sprintf("no script configured for '%s'", fullName)}, nil
	}

	return Action{
		Kind:    KindDeploy,
		Reason:  "deployment started",
		Target:  target,
		Context: deriveContext(&event, branch),
	}, nil
}

// deriveContext extracts the six environment fields from a push payload.
func deriveContext(event *github.PushEvent, branch string) Context {
	repo := event.GetRepo()
	fullName := repo.GetFullName()

	owner := repo.GetOwner().GetLogin()
	if owner == "" {
		owner = repo.GetOwner().GetName()
	}
	if owner == "" {
		// Push payloads always carry full_name even when the owner object
		// is sparse.
		if idx := strings.Index(fullName, "/"); idx > 0 {
			owner = fullName[:idx]
		}
	}

	return Context{
		Repository:     fullName,
		RepositoryName: repo.GetName(),
		Owner:          owner,
		Branch:         branch,
		Commit:         event.GetAfter(),
		Pusher:         event.GetPusher().GetName(),
	}
}
