// Package validation はリクエスト構造体の入力検証を提供する。
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hitoshi/kakeibo/internal/model"
)

// Validator はgo-playground/validatorをラップし、
// 検証エラーをフィールド単位のmodel.APIErrorに変換する。
type Validator struct {
	v *validator.Validate
}

// New はValidatorを生成する。フィールド名にはjsonタグの名前を使う。
// 標準のタグに加えて、UTF-8のバイト数で上限を検査する maxbytes を登録する。
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	// タグ名と関数が空でない限りエラーは返らない
	_ = v.RegisterValidation("maxbytes", maxBytes)
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return &Validator{v: v}
}

// Struct は構造体を検証する。
// 検証エラーはVALIDATION_FAILEDのAPIErrorとして返し、それ以外のエラーはそのまま返す。
func (v *Validator) Struct(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate: %w", err)
	}

	fields := make([]model.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, model.FieldError{
			Field:   fe.Field(),
			Message: message(fe),
		})
	}
	return model.NewValidationError(fields...)
}

// maxBytes は文字列のバイト数がパラメータ以下であることを検査する。
// maxは文字数で数えるため、マルチバイト文字を含む値の上限にはこちらを使う。
func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s は必須です。", fe.Field())
	case "email":
		return "メールアドレスの形式が正しくありません。"
	case "min":
		return fmt.Sprintf("%s は %s 文字以上で入力してください。", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s は %s 文字以内で入力してください。", fe.Field(), fe.Param())
	case "maxbytes":
		return fmt.Sprintf("%s は %s バイト以内で入力してください。", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s は %s のいずれかを指定してください。", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "uuid", "uuid4":
		return fmt.Sprintf("%s の形式が正しくありません。", fe.Field())
	default:
		return fmt.Sprintf("%s が不正です。", fe.Field())
	}
}
