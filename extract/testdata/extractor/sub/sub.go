package extractor_sub

import (
	"context"
	"fmt"

	"github.com/SLASH2NL/translationloader"
)

var (
	tr      = translationloader.Global()
	message = tr.Message(context.Background(), "sub.translation", nil)
)

func init() {
	fmt.Println(message)
}
