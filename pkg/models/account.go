// PROPRIETARY AND CONFIDENTIAL
//
// Unauthorized copying of this file via any medium is strictly prohibited.
//
// Copyright (c) 2021-2022 Iterable, Inc. All rights reserved.

package models

import (
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

const (
	// UserIDFieldCustomerID selects the customer identity as the userId
	// sent to Iterable
	UserIDFieldCustomerID = "customerId"

	// UserIDFieldMPID selects the mParticle-assigned MPID as the userId
	// sent to Iterable
	UserIDFieldMPID = "mpid"
)

// Account holds the connector settings configured for one mParticle
// account, as a loosely-typed key-value map
type Account struct {
	AccountID       int64             `json:"account_id"`
	AccountSettings map[string]string `json:"account_settings"`
}

// AccountConfig is the typed view of the account settings consumed by
// the engine
type AccountConfig struct {
	APIKey                     string `mapstructure:"apiKey"`
	GCMIntegrationName         string `mapstructure:"gcmIntegrationName"`
	APNSProdIntegrationName    string `mapstructure:"apnsProdIntegrationName"`
	APNSSandboxIntegrationName string `mapstructure:"apnsSandboxIntegrationName"`
	CoerceStringsToScalars     bool   `mapstructure:"coerceStringsToScalars"`
	UserIDField                string `mapstructure:"userIdField"`
}

// Config decodes the account settings map into an AccountConfig.
// Decoding is weakly typed so boolean settings arriving as the strings
// "true"/"false" are accepted.
func (a *Account) Config() (*AccountConfig, error) {
	cfg := AccountConfig{
		UserIDField: UserIDFieldCustomerID,
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return nil, errors.Wrap(err, "Failed to build account settings decoder")
	}
	if err := decoder.Decode(a.AccountSettings); err != nil {
		return nil, errors.Wrap(err, "Failed to decode account settings")
	}

	if cfg.APIKey == "" {
		return nil, errors.New("Account settings are missing required setting 'apiKey'")
	}
	if cfg.UserIDField == "" {
		cfg.UserIDField = UserIDFieldCustomerID
	}
	return &cfg, nil
}

// UseMPID reports whether the account is configured to use the MPID as
// the Iterable userId instead of the customer identity
func (c *AccountConfig) UseMPID() bool {
	return c.UserIDField == UserIDFieldMPID
}
