package business

import (
	"context"
	"strings"

	"github.com/BruksfildServices01/micro8gents-api/internal/audit"
	"github.com/BruksfildServices01/micro8gents-api/internal/models"
	"github.com/BruksfildServices01/micro8gents-api/internal/storage"
)

type FAQInput struct {
	Question string
	Answer   string
}

type ReplaceFAQs struct {
	store storage.FAQStore
	audit audit.Recorder
}

func NewReplaceFAQs(
	store storage.FAQStore,
	audit audit.Recorder,
) *ReplaceFAQs {
	return &ReplaceFAQs{
		store: store,
		audit: audit,
	}
}

func (uc *ReplaceFAQs) Execute(
	ctx context.Context,
	businessID uint,
	userID uint,
	faqs []FAQInput,
) ([]models.FAQ, error) {

	if err := uc.store.DeleteFAQsByBusinessID(ctx, businessID); err != nil {
		return nil, err
	}

	out := make([]models.FAQ, 0, len(faqs))
	for _, in := range faqs {
		f := models.FAQ{
			BusinessID: businessID,
			Question:   strings.TrimSpace(in.Question),
			Answer:     strings.TrimSpace(in.Answer),
		}
		if err := uc.store.CreateFAQ(ctx, &f); err != nil {
			return nil, err
		}
		out = append(out, f)
	}

	uc.audit.Dispatch(audit.Event{
		BusinessID: businessID,
		UserID:     &userID,
		Action:     audit.ActionFAQsReplaced,
		Entity:     "faq",
		Metadata:   map[string]int{"count": len(out)},
	})

	return out, nil
}
