/*
Copyright 2024 FeedChain Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package notification

import (
	"net/http"
	"time"

	"github.com/feedchain/feedchain/config"
	"github.com/feedchain/feedchain/internal/request"
	"github.com/sirupsen/logrus"
)

type slackText struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

type slackBlock struct {
	Type   string      `json:"type"`
	Text   *slackText  `json:"text,omitempty"`
	Fields []slackText `json:"fields,omitempty"`
}

type slackMessage struct {
	Blocks []slackBlock `json:"blocks"`
}

func slackPayload(project string, err error, at time.Time) slackMessage {
	return slackMessage{Blocks: []slackBlock{
		{Type: "header", Text: &slackText{Type: "plain_text", Text: "Error From " + project, Emoji: true}},
		{Type: "section", Fields: []slackText{{Type: "mrkdwn", Text: "*Error:*\n" + err.Error()}}},
		{Type: "section", Fields: []slackText{{Type: "mrkdwn", Text: "*Time:*\n" + at.Format(time.RFC822)}}},
	}}
}

// SlackNotification posts err to the configured Slack webhook.
func SlackNotification(err error) error {
	conf, cErr := config.Fetch()
	if cErr != nil {
		return cErr
	}

	payload, pErr := request.ToJsonReq(slackPayload(conf.ProjectName, err, time.Now()))
	if pErr != nil {
		return pErr
	}

	req, rErr := http.NewRequest(http.MethodPost, conf.Notification.Slack.WebhookUrl, payload)
	if rErr != nil {
		return rErr
	}

	_, cErr = request.Call(req, nil)
	return cErr
}

// NotifyError logs systemError and, when a Slack webhook is configured,
// reports it there without blocking the caller.
func NotifyError(systemError error) {
	logrus.Error(systemError)

	conf, err := config.Fetch()
	if err != nil || conf.Notification.Slack.WebhookUrl == "" {
		return
	}

	go func() {
		if err := SlackNotification(systemError); err != nil {
			logrus.WithError(err).Warn("slack notification failed")
		}
	}()
}
