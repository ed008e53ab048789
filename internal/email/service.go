package email

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yihhan/coaching-calendar-app-sub000/internal/logger"
	"github.com/yihhan/coaching-calendar-app-sub000/internal/metrics"
)

const (
	queueKey       = "emails"
	failedQueueKey = "emails:failed"
	maxTries       = 3
)

type EmailJob struct {
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Type    string    `json:"type"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

type Service struct {
	redis    *redis.Client
	from     string
	fromName string
	smtpHost string
	smtpPort string
	smtpUser string
	smtpPass string
}

func New(fromEmail, fromName, smtpHost, smtpPort, smtpUser, smtpPass, redisAddr string) *Service {
	return &Service{
		redis: redis.NewClient(&redis.Options{
			Addr: redisAddr,
		}),
		from:     fromEmail,
		fromName: fromName,
		smtpHost: smtpHost,
		smtpPort: smtpPort,
		smtpUser: smtpUser,
		smtpPass: smtpPass,
	}
}

func (s *Service) Send(ctx context.Context, to, name, subject, body string) error {
	return s.enqueue(ctx, EmailJob{
		To:      to,
		Name:    name,
		Subject: subject,
		Body:    body,
		Type:    "generic",
		Created: time.Now(),
	})
}

func (s *Service) enqueue(ctx context.Context, job EmailJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		logger.Errorf("Failed to marshal email job: %v", err)
		return err
	}

	if err := s.redis.LPush(ctx, queueKey, string(data)).Err(); err != nil {
		logger.Errorf("Failed to queue email to %s: %v", job.To, err)
		return err
	}

	logger.Info("Email queued", "subject", job.Subject, "to", job.To)
	return nil
}

// Start consumes the queue until the context is cancelled.
func (s *Service) Start(ctx context.Context) {
	logger.Info("Email worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Email worker stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, 2*time.Second, queueKey).Result()
	if err != nil {
		return
	}

	var job EmailJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Errorf("Bad email data: %v", err)
		return
	}

	job.Tries++
	if err := s.sendNow(job); err != nil {
		logger.Errorf("Failed to send email to %s: %v", job.To, err)
		metrics.RecordEmail(job.Type, "failed")

		if job.Tries < maxTries {
			time.Sleep(5 * time.Second)
			data, _ := json.Marshal(job)
			s.redis.LPush(context.Background(), queueKey, data)
		} else {
			logger.Errorf("Email to %s failed after %d attempts", job.To, maxTries)
			s.saveFailed(job, err)
		}
		return
	}

	metrics.RecordEmail(job.Type, "success")
	logger.Info("Email sent", "to", job.To, "type", job.Type)
}

func (s *Service) sendNow(job EmailJob) error {
	message := fmt.Sprintf("From: %s <%s>\r\n", s.fromName, s.from)
	message += fmt.Sprintf("To: %s\r\n", job.To)
	message += fmt.Sprintf("Subject: %s\r\n", job.Subject)
	message += "\r\n" + job.Body

	var auth smtp.Auth
	if s.smtpUser != "" && s.smtpPass != "" {
		auth = smtp.PlainAuth("", s.smtpUser, s.smtpPass, s.smtpHost)
	}

	addr := s.smtpHost + ":" + s.smtpPort
	return smtp.SendMail(addr, auth, s.from, []string{job.To}, []byte(message))
}

func (s *Service) saveFailed(job EmailJob, err error) {
	failed := map[string]interface{}{
		"job":   job,
		"error": err.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	s.redis.LPush(context.Background(), failedQueueKey, data)
}

func (s *Service) QueueLength(ctx context.Context) int64 {
	length, _ := s.redis.LLen(ctx, queueKey).Result()
	return length
}

func (s *Service) Close() error {
	return s.redis.Close()
}

// SendBookingRequested notifies the coach that a student wants a seat.
func (s *Service) SendBookingRequested(ctx context.Context, coachEmail, coachName, studentName, sessionTitle string, when time.Time) error {
	subject := "New booking request - " + sessionTitle
	body := fmt.Sprintf(`Hi %s,

%s has requested to join your session:

Session: %s
Time: %s

Approve or reject the request from your dashboard.

- CoachCal`, coachName, studentName, sessionTitle, when.Format("Jan 2, 2006 at 3:04 PM"))

	return s.enqueue(ctx, EmailJob{
		To: coachEmail, Name: coachName, Subject: subject, Body: body,
		Type: "booking_requested", Created: time.Now(),
	})
}

// SendBookingApproved notifies the student their seat is confirmed.
func (s *Service) SendBookingApproved(ctx context.Context, studentEmail, studentName, sessionTitle string, when time.Time) error {
	subject := "Booking confirmed - " + sessionTitle
	body := fmt.Sprintf(`Hi %s,

Your booking has been confirmed!

Session: %s
Time: %s

See you there!

- CoachCal`, studentName, sessionTitle, when.Format("Jan 2, 2006 at 3:04 PM"))

	return s.enqueue(ctx, EmailJob{
		To: studentEmail, Name: studentName, Subject: subject, Body: body,
		Type: "booking_approved", Created: time.Now(),
	})
}

// SendBookingRejected notifies the student the coach declined.
func (s *Service) SendBookingRejected(ctx context.Context, studentEmail, studentName, sessionTitle string) error {
	subject := "Booking declined - " + sessionTitle
	body := fmt.Sprintf(`Hi %s,

Unfortunately your booking request for "%s" was declined.

You can browse other available sessions on CoachCal.

- CoachCal`, studentName, sessionTitle)

	return s.enqueue(ctx, EmailJob{
		To: studentEmail, Name: studentName, Subject: subject, Body: body,
		Type: "booking_rejected", Created: time.Now(),
	})
}
