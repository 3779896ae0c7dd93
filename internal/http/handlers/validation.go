package handlers

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	types "github.com/Jacod97/taste-map/internal/domain"
)

var registerOnce sync.Once

// RegisterValidators adds the domain enum tags to gin's validator. Safe to call repeatedly.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
			return types.Category(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("visibility", func(fl validator.FieldLevel) bool {
			return types.Visibility(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("recommendation", func(fl validator.FieldLevel) bool {
			return types.ReviewRecommendation(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("helpful", func(fl validator.FieldLevel) bool {
			n := fl.Field().Int()
			return n == types.FeedbackHelpful || n == types.FeedbackNotHelpful
		})
	})
}
