package spoar_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/habiliai/spoar"
	"github.com/habiliai/spoar/agent"
	"github.com/habiliai/spoar/config"
	"github.com/habiliai/spoar/engine/enginetest"
	"github.com/habiliai/spoar/entity"
	"github.com/habiliai/spoar/errors"
	"github.com/habiliai/spoar/internal/mylog"
	"github.com/habiliai/spoar/internal/mytesting"
	"github.com/habiliai/spoar/memory"
	"github.com/stretchr/testify/suite"
)

type (
	RuntimeTestSuite struct {
		mytesting.Suite

		config *config.Config
	}

	// constantEmbedder maps every text to the same vector, so every stored
	// memory matches every query.
	constantEmbedder struct{}
)

func (constantEmbedder) Embed(ctx context.Context, texts ...string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

const knowledgeJSON = `[
  {"title": "VPN Setup", "content": "Install the corporate VPN client and sign in with SSO."},
  {"title": "Password Reset Policy", "content": "Passwords rotate every 90 days."}
]`

func (s *RuntimeTestSuite) SetupTest() {
	s.Suite.SetupTest()

	kb := s.TempPath("kb.json")
	s.Require().NoError(os.WriteFile(kb, []byte(knowledgeJSON), 0o644))

	s.config = config.Default()
	s.config.Tools.KnowledgeBasePath = kb
	s.config.Memory.Dimension = 2
	s.config.Loop.LogDir = s.TempPath("logs")
}

func TestRuntime(t *testing.T) {
	suite.Run(t, new(RuntimeTestSuite))
}

func (s *RuntimeTestSuite) newRuntime(chat *enginetest.Scripted, opts ...spoar.Option) *spoar.Runtime {
	base := []spoar.Option{
		spoar.WithConfig(s.config),
		spoar.WithLogger(mylog.Discard()),
		spoar.WithChatModel(chat),
	}
	r, err := spoar.New(s, append(base, opts...)...)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = r.Close() })
	return r
}

func (s *RuntimeTestSuite) TestAskUsesKnowledgeBaseAndRemembers() {
	chat := enginetest.Texts(
		`{"action":"USE_TOOL","tool":"search_knowledge_base","args":{"query":"vpn"}}`,
		"Found the VPN guide.",
		`{"action":"COMPLETE","answer":"Install the corporate VPN client and sign in with SSO."}`,
	)
	r := s.newRuntime(chat, spoar.WithEmbedder(constantEmbedder{}))

	s.Equal([]string{"search_knowledge_base", "calculate"}, r.Registry().Names())
	s.Equal(2, r.Knowledge().Len())

	res := r.Ask(s, "How do I set up the VPN?")
	s.Equal(agent.StatusCompleted, res.Status)
	s.Equal(2, res.Iterations)
	s.Contains(chat.Requests()[1].Messages[1].Content, "Title: VPN Setup")

	records, err := r.Memory().List(s)
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal(memory.Content("How do I set up the VPN?", "Install the corporate VPN client and sign in with SSO."), records[0].Content)

	path, err := r.SaveTranscript(res)
	s.Require().NoError(err)
	s.Equal(s.config.Loop.LogDir, filepath.Dir(path))
	s.True(strings.HasPrefix(filepath.Base(path), "agent_log_"))
	_, err = os.Stat(path)
	s.NoError(err)
}

func (s *RuntimeTestSuite) TestMemoryDisabledWithoutEmbedder() {
	r := s.newRuntime(enginetest.Texts(`{"action":"COMPLETE","answer":"42"}`))

	s.Nil(r.Memory())
	res := r.Ask(s, "What is the answer?")
	s.Equal("42", res.Answer)
}

func (s *RuntimeTestSuite) TestAgentDefinition() {
	def := entity.Agent{
		Name:          "calculator",
		System:        "You are a careful calculator.",
		MaxIterations: 2,
		Skills:        []entity.Skill{{Type: entity.SkillTypeNative, Name: "calculate"}},
	}
	chat := enginetest.Texts(
		`{"action":"USE_TOOL","tool":"calculate","args":{"expression":"1+1"}}`,
		"ok",
		`{"action":"USE_TOOL","tool":"calculate","args":{"expression":"2+2"}}`,
		"ok",
	)
	r := s.newRuntime(chat, spoar.WithAgent(def))

	s.Equal([]string{"calculate"}, r.Registry().Names())
	res := r.Ask(s, "keep adding")
	s.Equal(agent.StatusExhausted, res.Status)
	s.Equal(2, res.Iterations)
	s.True(strings.HasPrefix(chat.Requests()[0].Messages[1].Content, "You are a careful calculator."))
}

func (s *RuntimeTestSuite) TestUnknownTool() {
	_, err := spoar.New(s,
		spoar.WithConfig(s.config),
		spoar.WithLogger(mylog.Discard()),
		spoar.WithChatModel(enginetest.Texts()),
		spoar.WithAgent(entity.Agent{Name: "x", Skills: []entity.Skill{{Type: entity.SkillTypeNative, Name: "teleport"}}}),
	)
	s.Require().Error(err)
	s.True(errors.Is(err, errors.ErrToolNotFound))
}

func (s *RuntimeTestSuite) TestMissingAPIKey() {
	_, err := spoar.New(s, spoar.WithConfig(s.config), spoar.WithLogger(mylog.Discard()))
	s.Require().Error(err)
	s.True(errors.Is(err, errors.ErrInvalidConfig))
}
