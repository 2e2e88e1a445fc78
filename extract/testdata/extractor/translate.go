package extractor

import (
	"context"
	"fmt"

	"github.com/SLASH2NL/translationloader"
)

const (
	usedConst                         = "used.const"
	unusedConst translationloader.Key = "unused.const"
)

var (
	usedVar                         = "used.var"
	unusedVar translationloader.Key = "unused.var"

	tr *translationloader.Registry
)

func UseMessagesTranslate() {
	message := tr.Message(context.Background(), "login.welcome", map[string]any{"user": "john"})
	fmt.Println(message)

	// Use zipcode twice.
	tr.Message(context.Background(), "zipcode", map[string]any{"user": "john"})
	tr.Message(context.Background(), "zipcode", map[string]any{"user": "john"})
	fmt.Println(unusedVar)
}

func UseFunc(ctx context.Context) {
	Translate("use.func", nil)
}

func UseFuncWithConst(ctx context.Context) {
	Translate(usedConst, nil)
}

func UseFuncWithVar(ctx context.Context) {
	Translate(translationloader.Key(usedVar), nil)
}

func UseFuncWithInlineVar(ctx context.Context) {
	var translation translationloader.Key = "inline.var"

	Translate(translation, nil)
}

func Translate(key translationloader.Key, replacements map[string]any) string {
	return string(key)
}

func SameSignature(key string, replacements map[string]any) string {
	return key
}
