// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package social

import (
	"context"
	"fmt"

	"github.com/taibuivan/vidora/internal/platform/apperr"
)

// TargetChecker reports whether a relation target exists and is visible.
type TargetChecker interface {
	Exists(context context.Context, id string) (bool, error)
}

// CheckerFunc adapts a plain function to [TargetChecker].
type CheckerFunc func(context context.Context, id string) (bool, error)

// Exists calls f.
func (f CheckerFunc) Exists(context context.Context, id string) (bool, error) {
	return f(context, id)
}

// Targets maps each relation kind to the checker of its target type.
type Targets map[Kind]TargetChecker

// Ensure returns NotFound unless the target of kind exists.
func (targets Targets) Ensure(context context.Context, kind Kind, id string) error {
	checker, ok := targets[kind]
	if !ok {
		return apperr.Internal(fmt.Errorf("social_no_target_checker: %s", kind))
	}

	exists, err := checker.Exists(context, id)
	if err != nil {
		return fmt.Errorf("social_target_check_failed: %w", err)
	}
	if !exists {
		return apperr.NotFound(resourceName(kind))
	}
	return nil
}

// resourceName is the NotFound label for a missing target of kind.
func resourceName(kind Kind) string {
	switch kind {
	case KindSubscription:
		return "Channel"
	case KindVideoLike:
		return "Video"
	case KindCommentLike:
		return "Comment"
	case KindPostLike:
		return "Post"
	}
	return "Target"
}
