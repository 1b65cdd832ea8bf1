package enums

import "fmt"

// TestimonialType maps to the testimonials.type check constraint.
type TestimonialType string

const (
	TestimonialTypeText  TestimonialType = "text"
	TestimonialTypeVideo TestimonialType = "video"
)

var validTestimonialTypes = []TestimonialType{
	TestimonialTypeText,
	TestimonialTypeVideo,
}

// IsValid checks whether the given type matches the canonical enum.
func (t TestimonialType) IsValid() bool {
	for _, candidate := range validTestimonialTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTestimonialType converts raw strings into TestimonialType.
func ParseTestimonialType(value string) (TestimonialType, error) {
	for _, candidate := range validTestimonialTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid testimonial type %q", value)
}
