// notify.go
//
// HostelGate: admissions, residency and fee management for a charitable hostel trust
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of hostelgate.
// hostelgate is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// hostelgate is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with hostelgate.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/hostelgate/hostelgate/internal/config"
	"github.com/hostelgate/hostelgate/internal/metrics"
	"go.uber.org/zap"
)

// Channel is how a message reaches its recipient
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// Message is one outbound notification
type Message struct {
	Channel Channel
	To      string
	Subject string
	Body    string
}

// ChannelFor picks email for addresses and SMS for everything else
func ChannelFor(contact string) Channel {
	if strings.Contains(contact, "@") {
		return ChannelEmail
	}
	return ChannelSMS
}

// Notifier delivers messages
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// New builds the notifier selected by NOTIFY_PROVIDER
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (Notifier, error) {
	switch cfg.NotifyProvider {
	case "aws":
		n, err := NewAWS(ctx, cfg.AWSRegion, cfg.NotifyEmailFrom)
		if err != nil {
			return nil, err
		}
		return Counted(n), nil
	case "log", "":
		return Counted(NewLog(log)), nil
	}
	return nil, fmt.Errorf("unsupported notify provider: %s", cfg.NotifyProvider)
}

type counted struct {
	next Notifier
}

// Counted records every delivery attempt in the notification metrics
func Counted(next Notifier) Notifier {
	return counted{next: next}
}

func (c counted) Notify(ctx context.Context, msg Message) error {
	err := c.next.Notify(ctx, msg)
	metrics.Notifications.WithLabelValues(string(msg.Channel), metrics.Result(err)).Inc()
	return err
}

// LogNotifier writes messages to the log instead of delivering them
type LogNotifier struct {
	log *zap.Logger
}

// NewLog returns a notifier for development and tests
func NewLog(log *zap.Logger) *LogNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("notification has no recipient")
	}
	n.log.Info("Notification",
		zap.String("channel", string(msg.Channel)),
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
	)
	return nil
}
