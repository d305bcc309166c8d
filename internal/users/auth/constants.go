// Copyright (c) 2026 EduStream. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

// # Credential Constraints

const (
	// MinPasswordLength is the shortest password accepted at registration and reset.
	MinPasswordLength = 6

	// MaxNameLength bounds the display name.
	MaxNameLength = 50

	// ResetRequestedMessage is returned by forgot-password regardless of delivery.
	ResetRequestedMessage = "Password reset token generated. Check your email for instructions."

	// ResetCompletedMessage is returned after a successful reset.
	ResetCompletedMessage = "Password has been reset successfully"
)
