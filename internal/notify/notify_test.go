// notify_test.go
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
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeSES struct {
	inputs []*ses.SendEmailInput
	err    error
}

func (f *fakeSES) SendEmail(_ context.Context, in *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.inputs = append(f.inputs, in)
	return &ses.SendEmailOutput{}, f.err
}

type fakeSNS struct {
	inputs []*sns.PublishInput
}

func (f *fakeSNS) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.inputs = append(f.inputs, in)
	return &sns.PublishOutput{}, nil
}

func TestChannelFor(t *testing.T) {
	assert.Equal(t, ChannelEmail, ChannelFor("parent@example.com"))
	assert.Equal(t, ChannelSMS, ChannelFor("+919876543210"))
}

func TestAWSNotifierRoutesByChannel(t *testing.T) {
	email := &fakeSES{}
	sms := &fakeSNS{}
	n := &AWSNotifier{Email: email, SMS: sms, From: "office@example.org"}

	require.NoError(t, n.Notify(context.Background(), Message{Channel: ChannelEmail, To: "a@example.com", Subject: "Hi", Body: "Body"}))
	require.NoError(t, n.Notify(context.Background(), Message{Channel: ChannelSMS, To: "+919876543210", Body: "Code 123456"}))

	require.Len(t, email.inputs, 1)
	assert.Equal(t, "office@example.org", *email.inputs[0].Source)
	assert.Equal(t, []string{"a@example.com"}, email.inputs[0].Destination.ToAddresses)
	require.Len(t, sms.inputs, 1)
	assert.Equal(t, "Code 123456", *sms.inputs[0].Message)
}

func TestAWSNotifierWrapsErrors(t *testing.T) {
	n := &AWSNotifier{Email: &fakeSES{err: errors.New("throttled")}, SMS: &fakeSNS{}}
	err := n.Notify(context.Background(), Message{Channel: ChannelEmail, To: "a@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")

	assert.Error(t, n.Notify(context.Background(), Message{Channel: ChannelEmail}))
}

func TestLogNotifier(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	n := Counted(NewLog(zap.New(core)))

	require.NoError(t, n.Notify(context.Background(), Message{Channel: ChannelSMS, To: "9876543210", Body: "hello"}))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "9876543210", logs.All()[0].ContextMap()["to"])
}
