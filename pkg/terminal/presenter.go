package terminal

import (
	"context"

	"github.com/goliatone/go-enroll/pkg/enroll"
)

// Presenter renders workflow feedback through a PromptDriver.
type Presenter struct {
	driver PromptDriver
	theme  Theme
}

var _ enroll.Presenter = (*Presenter)(nil)

// NewPresenter binds a presenter to driver.
func NewPresenter(driver PromptDriver, theme Theme) *Presenter {
	return &Presenter{driver: driver, theme: theme}
}

// ShowErrors prints each displayed message on its own line.
func (p *Presenter) ShowErrors(ctx context.Context, errs enroll.Errors) error {
	for _, msg := range errs.Messages() {
		if err := p.driver.Info(ctx, p.theme.ErrorPrefix+msg); err != nil {
			return err
		}
	}
	return nil
}

// Acknowledge prints the summary and blocks until the operator confirms
// they have noted the credentials.
func (p *Presenter) Acknowledge(ctx context.Context, summary enroll.Summary) error {
	if err := p.driver.Info(ctx, summary.String()); err != nil {
		return err
	}
	for {
		ok, err := p.driver.Confirm(ctx, ConfirmConfig{
			Message: "Credentials noted? Continue",
			Help:    "The initial password is not shown again.",
		})
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
}
