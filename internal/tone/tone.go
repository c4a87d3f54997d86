// Package tone rates the tone of a player utterance toward a witness and
// turns it into a signed trust delta.
package tone

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/Roderick111/auror/internal/ai"
	"github.com/Roderick111/auror/internal/errors"
	"github.com/sashabaranov/go-openai"
)

// MaxDelta bounds the trust movement a single utterance can cause in either
// direction. Larger swings come only from spells and secrets.
const MaxDelta = 10

// Classifier rates an utterance from the witness's point of view. The result
// is clamped into [-MaxDelta, MaxDelta].
type Classifier interface {
	Classify(ctx context.Context, utterance string) (int, error)
}

const classifierPrompt = `You rate how an investigator's remark lands with a nervous witness.
Reply with a single integer between -10 and 10.
Positive numbers mean the remark builds trust, negative numbers mean it damages trust.
Politeness, patience, and empathy score positive. Accusations, insults, and threats score negative.
A neutral factual question scores 0. Reply with the integer only.`

// AIClassifier asks the chat model for the delta.
type AIClassifier struct {
	client *ai.Client
}

func NewAIClassifier(client *ai.Client) *AIClassifier {
	return &AIClassifier{client: client}
}

func (c *AIClassifier) Classify(ctx context.Context, utterance string) (int, error) {
	completion, err := c.client.SyncCompletion(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: classifierPrompt},
		{Role: openai.ChatMessageRoleUser, Content: utterance},
	})
	if err != nil {
		return 0, errors.Wrap(err, "classify tone")
	}
	if len(completion.Choices) == 0 {
		return 0, errors.New("empty tone completion")
	}
	delta, err := parseDelta(completion.Choices[0].Message.Content)
	if err != nil {
		return 0, errors.Wrap(err, "parse tone completion")
	}
	return clampDelta(delta), nil
}

var deltaPattern = regexp.MustCompile(`-?\d+`)

// parseDelta extracts the first integer from the model reply. Models
// occasionally wrap the number in prose despite the prompt.
func parseDelta(content string) (int, error) {
	match := deltaPattern.FindString(content)
	if match == "" {
		return 0, errors.New("no integer in completion")
	}
	delta, err := strconv.Atoi(match)
	if err != nil {
		return 0, errors.Wrap(err, "parse integer")
	}
	return delta, nil
}

// Word scores for the keyword fallback.
const (
	politeStep  = 3
	hostileStep = -4
)

var politeWords = map[string]bool{
	"please":     true,
	"thank":      true,
	"thanks":     true,
	"sorry":      true,
	"kindly":     true,
	"appreciate": true,
	"grateful":   true,
	"ma'am":      true,
	"madam":      true,
	"sir":        true,
	"professor":  true,
}

var hostileWords = map[string]bool{
	"liar":     true,
	"lying":    true,
	"stupid":   true,
	"useless":  true,
	"shut":     true,
	"hag":      true,
	"coward":   true,
	"fool":     true,
	"arrest":   true,
	"azkaban":  true,
	"wretched": true,
}

// KeywordClassifier is the deterministic fallback used in development, tests,
// and offline play. It scores an utterance by counting polite and hostile
// words.
type KeywordClassifier struct{}

func (KeywordClassifier) Classify(_ context.Context, utterance string) (int, error) {
	delta := 0
	for _, token := range strings.Fields(strings.ToLower(utterance)) {
		token = strings.Trim(token, ".,!?;:\"'()")
		if politeWords[token] {
			delta += politeStep
		}
		if hostileWords[token] {
			delta += hostileStep
		}
	}
	return clampDelta(delta), nil
}

func clampDelta(delta int) int {
	if delta > MaxDelta {
		return MaxDelta
	}
	if delta < -MaxDelta {
		return -MaxDelta
	}
	return delta
}
