package event

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Event is a classified webhook delivery. Reviewable events carry the
// pull-request coordinates; everything else carries a skip reason.
type Event struct {
	Forge      string // github, gitlab
	Type       string // forge's event type name
	Action     string
	Owner      string
	Repo       string
	Number     int
	Reviewable bool
	SkipReason string
}

type githubPayload struct {
	Action      string `json:"action"`
	Number      int    `json:"number"`
	PullRequest *struct {
		Number int `json:"number"`
	} `json:"pull_request"`
	Issue *struct {
		Number      int `json:"number"`
		PullRequest *struct {
			URL string `json:"url"`
		} `json:"pull_request"`
	} `json:"issue"`
	Comment *struct {
		Body string `json:"body"`
	} `json:"comment"`
	Repository struct {
		Name  string `json:"name"`
		Owner struct {
			Login string `json:"login"`
		} `json:"owner"`
	} `json:"repository"`
}

// ClassifyGitHub decides whether a GitHub webhook delivery should trigger a
// review. Reviewable: a pull_request event with action opened, synchronize,
// or reopened; or an issue_comment created on a pull request whose body
// contains the trigger token.
func ClassifyGitHub(eventType string, payload []byte, trigger string) (*Event, error) {
	var p githubPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("parsing payload: %w", err)
	}

	evt := &Event{
		Forge:  "github",
		Type:   eventType,
		Action: p.Action,
		Owner:  p.Repository.Owner.Login,
		Repo:   p.Repository.Name,
	}

	switch eventType {
	case "pull_request":
		switch p.Action {
		case "opened", "synchronize", "reopened":
			evt.Reviewable = true
			evt.Number = p.Number
			if evt.Number == 0 && p.PullRequest != nil {
				evt.Number = p.PullRequest.Number
			}
		default:
			evt.SkipReason = fmt.Sprintf("Unsupported pull request action: %s", p.Action)
		}

	case "issue_comment":
		switch {
		case p.Action != "created":
			evt.SkipReason = fmt.Sprintf("Unsupported comment action: %s", p.Action)
		case p.Issue == nil || p.Issue.PullRequest == nil:
			evt.SkipReason = "Comment is not on a pull request"
		case p.Comment == nil || !strings.Contains(p.Comment.Body, trigger):
			evt.SkipReason = "Comment does not contain review trigger"
		default:
			evt.Reviewable = true
			evt.Number = p.Issue.Number
		}

	default:
		evt.SkipReason = fmt.Sprintf("Unsupported event type: %s", eventType)
	}

	return evt, nil
}

type gitlabPayload struct {
	ObjectKind       string `json:"object_kind"`
	ObjectAttributes struct {
		Action string `json:"action"`
		IID    int    `json:"iid"`
		Note   string `json:"note"`
	} `json:"object_attributes"`
	MergeRequest *struct {
		IID int `json:"iid"`
	} `json:"merge_request"`
	Project struct {
		PathWithNamespace string `json:"path_with_namespace"`
	} `json:"project"`
}

// ClassifyGitLab is the GitLab counterpart of ClassifyGitHub. Reviewable:
// a merge_request event with action open, update, or reopen; or a note on a
// merge request containing the trigger token.
func ClassifyGitLab(eventType string, payload []byte, trigger string) (*Event, error) {
	var p gitlabPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("parsing payload: %w", err)
	}

	owner, repo, _ := strings.Cut(p.Project.PathWithNamespace, "/")

	evt := &Event{
		Forge:  "gitlab",
		Type:   eventType,
		Action: p.ObjectAttributes.Action,
		Owner:  owner,
		Repo:   repo,
	}

	switch p.ObjectKind {
	case "merge_request":
		switch p.ObjectAttributes.Action {
		case "open", "update", "reopen":
			evt.Reviewable = true
			evt.Number = p.ObjectAttributes.IID
		default:
			evt.SkipReason = fmt.Sprintf("Unsupported merge request action: %s", p.ObjectAttributes.Action)
		}

	case "note":
		switch {
		case p.MergeRequest == nil:
			evt.SkipReason = "Comment is not on a merge request"
		case !strings.Contains(p.ObjectAttributes.Note, trigger):
			evt.SkipReason = "Comment does not contain review trigger"
		default:
			evt.Reviewable = true
			evt.Number = p.MergeRequest.IID
		}

	default:
		evt.SkipReason = fmt.Sprintf("Unsupported event type: %s", p.ObjectKind)
	}

	return evt, nil
}
