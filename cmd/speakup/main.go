package main

import (
	"context"

	"github.com/Sherifrax/speakup-sub001/internal/app/bootstrap"
	"github.com/dalemusser/waffle/app"
)

func main() {
	app.Run(context.Background(), bootstrap.Hooks)
}
