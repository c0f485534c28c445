package wecom

import (
	"encoding/xml"
	"errors"
	"fmt"
)

// callbackEnvelope is the outer body of a POST callback. Production
// deliveries carry only the Encrypt blob; plaintext deliveries (dev/test)
// carry the message fields directly, so both shapes are declared here and
// the presence of Encrypt decides which mode applies.
type callbackEnvelope struct {
	XMLName    xml.Name `xml:"xml"`
	ToUserName string   `xml:"ToUserName"`
	AgentID    string   `xml:"AgentID"`
	Encrypt    string   `xml:"Encrypt"`

	// Plaintext-mode fields, ignored when Encrypt is set.
	inlineMessage
}

// inlineMessage is the logical message, either the decrypted inner XML or
// the plaintext body. One envelope always carries exactly one message.
type inlineMessage struct {
	FromUserName string `xml:"FromUserName"`
	CreateTime   int64  `xml:"CreateTime"`
	MsgType      string `xml:"MsgType"`
	Content      string `xml:"Content"`
	MsgID        string `xml:"MsgId"`
	Event        string `xml:"Event"`
	MediaID      string `xml:"MediaId"`
}

// innerMessage is the decrypted message XML.
type innerMessage struct {
	XMLName    xml.Name `xml:"xml"`
	ToUserName string   `xml:"ToUserName"`
	AgentID    string   `xml:"AgentID"`
	inlineMessage
}

// tokenResponse is the gettoken API response.
type tokenResponse struct {
	ErrCode     int    `json:"errcode"`
	ErrMsg      string `json:"errmsg"`
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// sendRequest is the message/send API request body.
type sendRequest struct {
	ToUser  string      `json:"touser"`
	MsgType string      `json:"msgtype"`
	AgentID int         `json:"agentid"`
	Text    textContent `json:"text"`
}

type textContent struct {
	Content string `json:"content"`
}

// sendResponse is the message/send API response.
type sendResponse struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

// userResponse is the user/get API response, trimmed to the fields the
// profile cache needs.
type userResponse struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
	UserID  string `json:"userid"`
	Name    string `json:"name"`
	Avatar  string `json:"avatar"`
}

// APIError is a non-zero errcode response from the WeCom API.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("wecom: api errcode %d: %s", e.Code, e.Message)
}

// authRejected reports whether the error is an access-token rejection that
// warrants invalidating the cached token and refetching.
func authRejected(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	// 40014: invalid access_token; 42001: access_token expired.
	return apiErr.Code == 40014 || apiErr.Code == 42001
}
