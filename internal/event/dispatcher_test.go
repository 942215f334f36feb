package event

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hoojinguyen/ai-pr-review/internal/llm"
	"github.com/hoojinguyen/ai-pr-review/internal/metrics"
	"github.com/hoojinguyen/ai-pr-review/internal/review"
	"github.com/hoojinguyen/ai-pr-review/internal/scm"
)

type fakeClient struct {
	name       string
	pr         *scm.PullRequest
	files      []scm.ChangedFile
	policyYAML []byte

	prErr    error
	filesErr error

	comments    []string
	nextComment int64
	createErr   error
}

func (f *fakeClient) Name() string {
	if f.name == "" {
		return "github"
	}
	return f.name
}

func (f *fakeClient) GetPullRequest(ctx context.Context, owner, repo string, number int) (*scm.PullRequest, error) {
	if f.prErr != nil {
		return nil, f.prErr
	}
	return f.pr, nil
}

func (f *fakeClient) GetChangedFiles(ctx context.Context, owner, repo string, number int) ([]scm.ChangedFile, error) {
	if f.filesErr != nil {
		return nil, f.filesErr
	}
	return f.files, nil
}

func (f *fakeClient) GetFileContent(ctx context.Context, owner, repo, path, ref string) ([]byte, error) {
	if f.policyYAML == nil {
		return nil, scm.ErrNotFound
	}
	return f.policyYAML, nil
}

func (f *fakeClient) CreateComment(ctx context.Context, owner, repo string, number int, body string) (int64, error) {
	if f.createErr != nil {
		return 0, f.createErr
	}
	f.comments = append(f.comments, body)
	f.nextComment++
	return f.nextComment, nil
}

func (f *fakeClient) UpdateComment(ctx context.Context, owner, repo string, number int, commentID int64, body string) error {
	return nil
}

func (f *fakeClient) RateLimit() scm.RateLimit { return scm.RateLimit{} }

type stubProvider struct {
	name       string
	reply      string
	err        error
	invokes    int
	lastPrompt string
}

func (s *stubProvider) Name() string      { return s.name }
func (s *stubProvider) IsAvailable() bool { return true }

func (s *stubProvider) Invoke(ctx context.Context, prompt string, opts llm.Options) (string, error) {
	s.invokes++
	s.lastPrompt = prompt
	return s.reply, s.err
}

func (s *stubProvider) FormatMessages(messages []llm.Message) interface{} { return messages }

func testClient() *fakeClient {
	return &fakeClient{
		pr: &scm.PullRequest{
			Number:  42,
			Title:   "Add rate limiter",
			HeadRef: "feature/limiter",
		},
		files: []scm.ChangedFile{
			{Path: "limiter.go", Patch: "+func Allow() bool { return true }", Additions: 10, Deletions: 2},
			{Path: "limiter_test.go", Patch: "+func TestAllow(t *testing.T) {}", Additions: 8},
		},
	}
}

func testDispatcher(client *fakeClient, provider llm.Provider) *Dispatcher {
	m := metrics.New()
	manager := llm.NewManager("", m)
	manager.Register(provider)
	d := NewDispatcher(manager, review.NewDeduper(time.Minute), m, trigger, ".ai-review.yml")
	d.RegisterClient(client)
	return d
}

func TestDispatchGitHubPostsReviewComment(t *testing.T) {
	client := testClient()
	provider := &stubProvider{name: "anthropic", reply: "Looks solid overall."}
	d := testDispatcher(client, provider)

	res, err := d.DispatchGitHub(context.Background(), "pull_request", githubPRPayload("opened", 42))
	if err != nil {
		t.Fatal(err)
	}
	if !res.Processed {
		t.Fatalf("not processed: reason=%q error=%q", res.Reason, res.Error)
	}
	if res.CommentID != 1 {
		t.Errorf("comment ID = %d, want 1", res.CommentID)
	}
	if len(client.comments) != 1 {
		t.Fatalf("comments posted = %d, want 1", len(client.comments))
	}
	if !strings.Contains(client.comments[0], "Looks solid overall.") {
		t.Errorf("comment missing model output: %q", client.comments[0])
	}
	if !strings.Contains(client.comments[0], "anthropic") {
		t.Errorf("comment missing provider attribution: %q", client.comments[0])
	}
	if provider.invokes != 1 {
		t.Errorf("provider invoked %d times, want 1", provider.invokes)
	}
	for _, f := range client.files {
		if !strings.Contains(provider.lastPrompt, f.Patch) {
			t.Errorf("prompt missing diff for %s", f.Path)
		}
	}
	if !strings.Contains(provider.lastPrompt, "```diff") {
		t.Error("prompt diffs should be fenced as code blocks")
	}
}

func TestDispatchSkipsCommentWithoutTrigger(t *testing.T) {
	client := testClient()
	provider := &stubProvider{name: "anthropic", reply: "x"}
	d := testDispatcher(client, provider)

	res, err := d.DispatchGitHub(context.Background(), "issue_comment",
		githubCommentPayload("created", "please review this", true))
	if err != nil {
		t.Fatal(err)
	}
	if res.Processed {
		t.Fatal("comment without trigger should be skipped")
	}
	if res.Reason != "Comment does not contain review trigger" {
		t.Errorf("reason = %q", res.Reason)
	}
	if provider.invokes != 0 {
		t.Error("provider should not be invoked for a skipped event")
	}
	if len(client.comments) != 0 {
		t.Error("no comment should be posted for a skipped event")
	}
}

func TestDispatchDedupesRepeatDeliveries(t *testing.T) {
	client := testClient()
	provider := &stubProvider{name: "anthropic", reply: "fine"}
	d := testDispatcher(client, provider)

	payload := githubPRPayload("synchronize", 42)
	first, err := d.DispatchGitHub(context.Background(), "pull_request", payload)
	if err != nil {
		t.Fatal(err)
	}
	if !first.Processed {
		t.Fatalf("first delivery not processed: %q", first.Reason)
	}

	second, err := d.DispatchGitHub(context.Background(), "pull_request", payload)
	if err != nil {
		t.Fatal(err)
	}
	if second.Processed {
		t.Fatal("second delivery inside cool-down should be skipped")
	}
	if second.Reason != "recently processed" {
		t.Errorf("reason = %q", second.Reason)
	}
	if len(client.comments) != 1 {
		t.Errorf("comments posted = %d, want 1", len(client.comments))
	}
}

func TestDispatchModelFailurePostsFailureComment(t *testing.T) {
	client := testClient()
	provider := &stubProvider{name: "anthropic", err: errors.New("overloaded")}
	d := testDispatcher(client, provider)

	res, err := d.DispatchGitHub(context.Background(), "pull_request", githubPRPayload("opened", 42))
	if err != nil {
		t.Fatal(err)
	}
	if res.Processed {
		t.Fatal("failed review should not be marked processed")
	}
	if res.Error == "" {
		t.Fatal("result should carry the failure")
	}
	if len(client.comments) != 1 {
		t.Fatalf("comments posted = %d, want failure comment", len(client.comments))
	}
	if !strings.Contains(client.comments[0], "could not be completed") {
		t.Errorf("failure comment body = %q", client.comments[0])
	}
}

func TestDispatchFailedReviewDoesNotEnterCooldown(t *testing.T) {
	client := testClient()
	provider := &stubProvider{name: "anthropic", err: errors.New("overloaded")}
	d := testDispatcher(client, provider)

	payload := githubPRPayload("opened", 42)
	if _, err := d.DispatchGitHub(context.Background(), "pull_request", payload); err != nil {
		t.Fatal(err)
	}

	provider.err = nil
	provider.reply = "recovered"
	res, err := d.DispatchGitHub(context.Background(), "pull_request", payload)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Processed {
		t.Fatalf("retry after failure should be processed, got reason=%q error=%q", res.Reason, res.Error)
	}
}

func TestDispatchDisabledByPolicy(t *testing.T) {
	client := testClient()
	client.policyYAML = []byte("general:\n  enabled: false\n")
	provider := &stubProvider{name: "anthropic", reply: "x"}
	d := testDispatcher(client, provider)

	res, err := d.DispatchGitHub(context.Background(), "pull_request", githubPRPayload("opened", 42))
	if err != nil {
		t.Fatal(err)
	}
	if res.Processed {
		t.Fatal("review disabled by policy should be skipped")
	}
	if res.Reason != "reviews disabled by repository policy" {
		t.Errorf("reason = %q", res.Reason)
	}
	if provider.invokes != 0 {
		t.Error("provider should not be invoked when disabled")
	}
}

func TestDispatchNoChangedFiles(t *testing.T) {
	client := testClient()
	client.files = nil
	provider := &stubProvider{name: "anthropic", reply: "x"}
	d := testDispatcher(client, provider)

	res, err := d.DispatchGitHub(context.Background(), "pull_request", githubPRPayload("opened", 42))
	if err != nil {
		t.Fatal(err)
	}
	if res.Processed {
		t.Fatal("empty change set should be skipped")
	}
	if res.Reason != "no files changed" {
		t.Errorf("reason = %q", res.Reason)
	}
}

func TestDispatchSizeLimits(t *testing.T) {
	client := testClient()
	client.policyYAML = []byte("general:\n  max_size: 5\n")
	provider := &stubProvider{name: "anthropic", reply: "x"}
	d := testDispatcher(client, provider)

	res, err := d.DispatchGitHub(context.Background(), "pull_request", githubPRPayload("opened", 42))
	if err != nil {
		t.Fatal(err)
	}
	if res.Processed {
		t.Fatal("oversized change should be skipped")
	}
	if res.Reason != "change exceeds maximum review size" {
		t.Errorf("reason = %q", res.Reason)
	}
}

func TestDispatchFetchErrorReturnsResultNotError(t *testing.T) {
	client := testClient()
	client.prErr = errors.New("boom")
	provider := &stubProvider{name: "anthropic", reply: "x"}
	d := testDispatcher(client, provider)

	res, err := d.DispatchGitHub(context.Background(), "pull_request", githubPRPayload("opened", 42))
	if err != nil {
		t.Fatalf("fetch failure should be reported in the result, not as an error: %v", err)
	}
	if res.Processed || res.Error == "" {
		t.Fatalf("result = %+v", res)
	}
}

func TestDispatchBadPayloadReturnsError(t *testing.T) {
	client := testClient()
	d := testDispatcher(client, &stubProvider{name: "anthropic"})

	if _, err := d.DispatchGitHub(context.Background(), "pull_request", []byte(`{broken`)); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestDispatchGitLabMergeRequest(t *testing.T) {
	client := testClient()
	client.name = "gitlab"
	provider := &stubProvider{name: "anthropic", reply: "reviewed"}
	d := testDispatcher(client, provider)

	payload := []byte(`{
		"object_kind": "merge_request",
		"object_attributes": {"action": "open", "iid": 42},
		"project": {"path_with_namespace": "acme/widgets"}
	}`)
	res, err := d.DispatchGitLab(context.Background(), "Merge Request Hook", payload)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Processed {
		t.Fatalf("not processed: reason=%q error=%q", res.Reason, res.Error)
	}
	if len(client.comments) != 1 {
		t.Errorf("comments posted = %d, want 1", len(client.comments))
	}
}

func TestDispatchUnconfiguredForge(t *testing.T) {
	m := metrics.New()
	manager := llm.NewManager("", m)
	manager.Register(&stubProvider{name: "anthropic", reply: "x"})
	d := NewDispatcher(manager, review.NewDeduper(time.Minute), m, trigger, ".ai-review.yml")

	res, err := d.DispatchGitHub(context.Background(), "pull_request", githubPRPayload("opened", 1))
	if err != nil {
		t.Fatal(err)
	}
	if res.Processed {
		t.Fatal("delivery for an unconfigured forge should not be processed")
	}
	if res.Error == "" {
		t.Error("result should name the missing forge")
	}
}
