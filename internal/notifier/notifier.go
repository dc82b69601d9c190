package notifier

import (
	"context"
	"errors"

	"job-portal/internal/model"
)

// EventJobPosted 新职位发布事件名，前端按此名称订阅。
const EventJobPosted = "newJobPosted"

// Event 推送给订阅方的消息。
type Event struct {
	Event string           `json:"event"`
	Data  model.JobListing `json:"data"`
}

// Notifier 用于广播新发布的职位。
type Notifier interface {
	Notify(ctx context.Context, jobs []model.JobListing) error
}

// Fanout 依次调用全部通知器，汇总所有错误。
type Fanout []Notifier

// Notify 单个通知器失败不影响其余通知器。
func (f Fanout) Notify(ctx context.Context, jobs []model.JobListing) error {
	var errs []error
	for _, n := range f {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, jobs); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
