// PROPRIETARY AND CONFIDENTIAL
//
// Unauthorized copying of this file via any medium is strictly prohibited.
//
// Copyright (c) 2021-2022 Iterable, Inc. All rights reserved.

package target

// Iterable API endpoint paths, defined at https://api.iterable.com/api/docs
const (
	trackPath               = "api/events/track"
	trackPushOpenPath       = "api/events/trackPushOpen"
	userUpdatePath          = "api/users/update"
	updateEmailPath         = "api/users/updateEmail"
	registerTokenPath       = "api/users/registerDeviceToken"
	listSubscribePath       = "api/lists/subscribe"
	listUnsubscribePath     = "api/lists/unsubscribe"
	trackPurchasePath       = "api/commerce/trackPurchase"
	updateSubscriptionsPath = "api/users/updateSubscriptions"
)

// Device platform names accepted by registerDeviceToken
const (
	PlatformAPNS        = "APNS"
	PlatformAPNSSandbox = "APNS_SANDBOX"
	PlatformGCM         = "GCM"
)

// Request is one Iterable API request shape; Path returns the endpoint
// it is posted to
type Request interface {
	Path() string
}

// UserFields identifies the user a request applies to. Either email or
// userId must be set; email takes precedence when both are.
type UserFields struct {
	Email  string `json:"email,omitempty"`
	UserID string `json:"userId,omitempty"`
}

// Empty reports whether neither email nor userId is set, in which case
// no request can be dispatched for the user
func (u UserFields) Empty() bool {
	return u.Email == "" && u.UserID == ""
}

// APIUser is a subscriber entry on list subscribe/unsubscribe requests
type APIUser struct {
	Email      string                 `json:"email,omitempty"`
	UserID     string                 `json:"userId,omitempty"`
	DataFields map[string]interface{} `json:"dataFields,omitempty"`
}

// TrackRequest records a custom event against a user
type TrackRequest struct {
	UserFields
	EventName  string                 `json:"eventName"`
	ID         string                 `json:"id,omitempty"`
	CreatedAt  int64                  `json:"createdAt,omitempty"`
	DataFields map[string]interface{} `json:"dataFields,omitempty"`
	CampaignID int                    `json:"campaignId,omitempty"`
	TemplateID int                    `json:"templateId,omitempty"`
}

// Path implements Request
func (TrackRequest) Path() string { return trackPath }

// TrackPushOpenRequest records a push notification open
type TrackPushOpenRequest struct {
	UserFields
	CampaignID int    `json:"campaignId"`
	TemplateID int    `json:"templateId"`
	MessageID  string `json:"messageId,omitempty"`
	CreatedAt  int64  `json:"createdAt,omitempty"`
}

// Path implements Request
func (TrackPushOpenRequest) Path() string { return trackPushOpenPath }

// Device describes the push token being registered
type Device struct {
	Token           string                 `json:"token"`
	Platform        string                 `json:"platform"`
	ApplicationName string                 `json:"applicationName"`
	DataFields      map[string]interface{} `json:"dataFields,omitempty"`
}

// RegisterDeviceTokenRequest attaches a device push token to a user
type RegisterDeviceTokenRequest struct {
	UserFields
	Device Device `json:"device"`
}

// Path implements Request
func (RegisterDeviceTokenRequest) Path() string { return registerTokenPath }

// UpdateEmailRequest renames a user's email address
type UpdateEmailRequest struct {
	CurrentEmail string `json:"currentEmail"`
	NewEmail     string `json:"newEmail"`
}

// Path implements Request
func (UpdateEmailRequest) Path() string { return updateEmailPath }

// UserUpdateRequest upserts a user profile's data fields
type UserUpdateRequest struct {
	UserFields
	DataFields map[string]interface{} `json:"dataFields,omitempty"`
}

// Path implements Request
func (UserUpdateRequest) Path() string { return userUpdatePath }

// CommerceItem is one purchased product on a trackPurchase request
type CommerceItem struct {
	ID         string                 `json:"id"`
	SKU        string                 `json:"sku,omitempty"`
	Name       string                 `json:"name,omitempty"`
	Price      float64                `json:"price"`
	Quantity   int                    `json:"quantity"`
	Categories []string               `json:"categories,omitempty"`
	DataFields map[string]interface{} `json:"dataFields,omitempty"`
}

// TrackPurchaseRequest records a purchase with its items
type TrackPurchaseRequest struct {
	ID        string         `json:"id,omitempty"`
	User      APIUser        `json:"user"`
	Items     []CommerceItem `json:"items"`
	Total     float64        `json:"total"`
	CreatedAt int64          `json:"createdAt,omitempty"`
}

// Path implements Request
func (TrackPurchaseRequest) Path() string { return trackPurchasePath }

// SubscribeRequest adds subscribers to an Iterable list
type SubscribeRequest struct {
	ListID      int       `json:"listId"`
	Subscribers []APIUser `json:"subscribers"`
}

// Path implements Request
func (SubscribeRequest) Path() string { return listSubscribePath }

// UnsubscribeRequest removes subscribers from an Iterable list
type UnsubscribeRequest struct {
	ListID      int       `json:"listId"`
	Subscribers []APIUser `json:"subscribers"`
}

// Path implements Request
func (UnsubscribeRequest) Path() string { return listUnsubscribePath }

// UpdateSubscriptionsRequest updates a user's list and channel
// subscription state
type UpdateSubscriptionsRequest struct {
	UserFields
	EmailListIDs               []int `json:"emailListIds,omitempty"`
	UnsubscribedChannelIDs     []int `json:"unsubscribedChannelIds,omitempty"`
	UnsubscribedMessageTypeIDs []int `json:"unsubscribedMessageTypeIds,omitempty"`
	CampaignID                 int   `json:"campaignId,omitempty"`
	TemplateID                 int   `json:"templateId,omitempty"`
}

// Path implements Request
func (UpdateSubscriptionsRequest) Path() string { return updateSubscriptionsPath }
