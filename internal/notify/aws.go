// aws.go
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

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// EmailAPI is the part of the SES client used for email
type EmailAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SMSAPI is the part of the SNS client used for text messages
type SMSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// AWSNotifier sends email through SES and SMS through SNS
type AWSNotifier struct {
	Email EmailAPI
	SMS   SMSAPI
	From  string
}

// NewAWS loads the default AWS credential chain for region
func NewAWS(ctx context.Context, region, from string) (*AWSNotifier, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &AWSNotifier{
		Email: ses.NewFromConfig(cfg),
		SMS:   sns.NewFromConfig(cfg),
		From:  from,
	}, nil
}

func (n *AWSNotifier) Notify(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("notification has no recipient")
	}

	switch msg.Channel {
	case ChannelEmail:
		_, err := n.Email.SendEmail(ctx, &ses.SendEmailInput{
			Source:      aws.String(n.From),
			Destination: &sestypes.Destination{ToAddresses: []string{msg.To}},
			Message: &sestypes.Message{
				Subject: &sestypes.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
				Body: &sestypes.Body{
					Text: &sestypes.Content{Data: aws.String(msg.Body), Charset: aws.String("UTF-8")},
				},
			},
		})
		if err != nil {
			return fmt.Errorf("failed to send email: %w", err)
		}
	case ChannelSMS:
		_, err := n.SMS.Publish(ctx, &sns.PublishInput{
			PhoneNumber: aws.String(msg.To),
			Message:     aws.String(msg.Body),
		})
		if err != nil {
			return fmt.Errorf("failed to send sms: %w", err)
		}
	default:
		return fmt.Errorf("unsupported channel: %s", msg.Channel)
	}
	return nil
}
