package chatbot

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/school-assistant-api/internal/models"
)

// Directory reads the roster facts handed to the language model.
type Directory interface {
	StudentNames(ctx context.Context, year, limit int) ([]string, error)
	CountStudents(ctx context.Context, year int) (int, error)
	Classes(ctx context.Context, year int) ([]models.Class, error)
	TeacherNames(ctx context.Context) ([]string, error)
	CountTeachers(ctx context.Context) (int, error)
}

// SchoolContext is the roster snapshot embedded in the system prompt.
type SchoolContext struct {
	Students     int
	Classes      []string
	Teachers     int
	TeacherNames []string
	StudentNames []string
}

// GatherContext loads the roster snapshot. Lookups run concurrently and the
// first failure cancels the rest.
func (b *Bot) GatherContext(ctx context.Context) (*SchoolContext, error) {
	var out SchoolContext
	var classes []models.Class
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.Students, err = b.directory.CountStudents(gctx, b.year)
		return err
	})
	g.Go(func() (err error) {
		classes, err = b.directory.Classes(gctx, b.year)
		return err
	})
	g.Go(func() (err error) {
		out.Teachers, err = b.directory.CountTeachers(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.TeacherNames, err = b.directory.TeacherNames(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.StudentNames, err = b.directory.StudentNames(gctx, b.year, b.studentCap)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("gather school context: %w", err)
	}
	for _, c := range classes {
		out.Classes = append(out.Classes, c.Label())
	}
	return &out, nil
}

// SystemPrompt renders the assistant instructions for a snapshot.
func (sc *SchoolContext) SystemPrompt() string {
	var sb strings.Builder
	sb.WriteString("당신은 학교 관리 시스템의 AI 어시스턴트입니다.\n\n")
	sb.WriteString("현재 시스템 정보:\n")
	fmt.Fprintf(&sb, "- 전체 학생 수: %d명\n", sc.Students)
	fmt.Fprintf(&sb, "- 전체 반 수: %d개\n", len(sc.Classes))
	fmt.Fprintf(&sb, "- 전체 선생님 수: %d명\n\n", sc.Teachers)
	fmt.Fprintf(&sb, "선생님 명단: %s\n\n", strings.Join(sc.TeacherNames, ", "))
	sb.WriteString("반 정보:\n")
	for _, c := range sc.Classes {
		sb.WriteString("- " + c + "\n")
	}
	fmt.Fprintf(&sb, "\n학생 명단 (일부): %s\n\n", strings.Join(sc.StudentNames, ", "))
	sb.WriteString("친근하고 도움이 되는 답변을 한국어로 제공해주세요.")
	return sb.String()
}

// fallback forwards the message to the model. A context that cannot be
// gathered still lets the model answer with an empty snapshot.
func (b *Bot) fallback(ctx context.Context, req Request) (string, error) {
	if b.provider == nil {
		return replyAIFailed, nil
	}
	sc, err := b.GatherContext(ctx)
	if err != nil {
		b.logger.Warn("chat context unavailable", zap.Error(err))
		sc = &SchoolContext{}
	}
	reply, err := b.generate(ctx, sc.SystemPrompt(), req.Message)
	if err != nil {
		b.logger.Error("ai request failed", zap.String("provider", b.provider.Info().Provider), zap.Error(err))
		return replyAIFailed, nil
	}
	return reply, nil
}
