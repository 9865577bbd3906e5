package validation

import (
	"fmt"
	"strings"
)

// Minimum lengths applied after trimming surrounding whitespace.
const (
	MinBoardNameLen     = 2
	MinTagNameLen       = 2
	MinFeedbackTitleLen = 5
	MinFeedbackBodyLen  = 10
	MinCommentLen       = 3

	MaxBoardNameLen     = 255
	MaxTagNameLen       = 50
	MaxFeedbackTitleLen = 255
	MaxFeedbackBodyLen  = 20000
	MaxCommentLen       = 10000
)

// ValidateBoardName trims and validates a board name, returning the trimmed value.
func ValidateBoardName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if len(name) < MinBoardNameLen {
		return "", fmt.Errorf("board name must be at least %d characters", MinBoardNameLen)
	}
	if len(name) > MaxBoardNameLen {
		return "", fmt.Errorf("board name must not exceed %d characters", MaxBoardNameLen)
	}
	return name, nil
}

// ValidateTagName trims, lowercases and validates a tag name, returning the
// normalized value.
func ValidateTagName(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if len(name) < MinTagNameLen {
		return "", fmt.Errorf("tag name must be at least %d characters", MinTagNameLen)
	}
	if len(name) > MaxTagNameLen {
		return "", fmt.Errorf("tag name must not exceed %d characters", MaxTagNameLen)
	}
	return name, nil
}

// ValidateFeedbackTitle trims and validates a feedback title.
func ValidateFeedbackTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if len(title) < MinFeedbackTitleLen {
		return "", fmt.Errorf("title must be at least %d characters", MinFeedbackTitleLen)
	}
	if len(title) > MaxFeedbackTitleLen {
		return "", fmt.Errorf("title must not exceed %d characters", MaxFeedbackTitleLen)
	}
	return title, nil
}

// ValidateFeedbackContent trims and validates a feedback body.
func ValidateFeedbackContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if len(content) < MinFeedbackBodyLen {
		return "", fmt.Errorf("content must be at least %d characters", MinFeedbackBodyLen)
	}
	if len(content) > MaxFeedbackBodyLen {
		return "", fmt.Errorf("content must not exceed %d characters", MaxFeedbackBodyLen)
	}
	return content, nil
}

// ValidateCommentContent trims and validates a comment body.
func ValidateCommentContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if len(content) < MinCommentLen {
		return "", fmt.Errorf("comment must be at least %d characters", MinCommentLen)
	}
	if len(content) > MaxCommentLen {
		return "", fmt.Errorf("comment must not exceed %d characters", MaxCommentLen)
	}
	return content, nil
}
