package notifier

import (
	"context"
	"log"
	"os"

	"job-portal/internal/model"
)

// LogNotifier 仅打印新发布职位，适合开发阶段使用。
type LogNotifier struct {
	logger *log.Logger
}

// NewLogNotifier 创建日志通知器，未提供 logger 时默认输出到标准输出。
func NewLogNotifier(logger *log.Logger) *LogNotifier {
	if logger == nil {
		logger = log.New(os.Stdout, "[notify] ", log.LstdFlags)
	}
	return &LogNotifier{logger: logger}
}

// Notify 逐条打印职位与发布企业。
func (n LogNotifier) Notify(ctx context.Context, jobs []model.JobListing) error {
	for _, job := range jobs {
		n.logger.Printf("job posted: %s by %s (%s)", job.Title, job.Company.Name, job.ID)
	}
	return nil
}
