package cli

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/camkeeper/internal/client/models"
	"github.com/dmitrijs2005/camkeeper/internal/common"
	"github.com/dmitrijs2005/camkeeper/internal/filex"
	"github.com/dmitrijs2005/camkeeper/internal/netx"
)

const (
	frameFlag = "--frame"
	framesDir = "frames"
)

// Test seams for storing captured frames.
var (
	writeFile = filex.WriteInSubdir
	now       = time.Now
)

// Analyze probes a stream and prints its characteristics.
//
//	analyze <rtsp-url> [--frame]
func (a *App) Analyze(ctx context.Context, args []string) error {
	return a.analyze(ctx, models.ModeCharacteristics, args)
}

// Pipeline asks for a generated GStreamer pipeline for a stream.
//
//	pipeline <rtsp-url> [--frame]
func (a *App) Pipeline(ctx context.Context, args []string) error {
	return a.analyze(ctx, models.ModePipeline, args)
}

func (a *App) analyze(ctx context.Context, mode models.AnalysisMode, args []string) error {
	if !a.requireLogin() {
		return nil
	}
	var url string
	frame := false
	for _, arg := range args {
		if arg == frameFlag {
			frame = true
			continue
		}
		url = arg
	}
	if url == "" {
		var err error
		if url, err = getSimpleText(a.reader, "RTSP URL", a.out); err != nil {
			return err
		}
	}

	res, err := a.analyzer.Analyze(ctx, url, mode, frame)
	if err != nil {
		a.report(err)
		return err
	}

	if c := res.Characteristics; c != nil {
		printlnFn(fmt.Sprintf("codec: %s  %dx%d @ %.2f fps  bitrate: %d", c.Codec, c.Width, c.Height, c.Framerate, c.Bitrate))
		if c.AudioCodec != "" {
			printlnFn("audio:", c.AudioCodec)
		}
	}
	if res.Command != "" {
		printlnFn(res.Command)
	}
	if res.Frame != "" {
		a.saveFrame(res.Frame)
	}
	if res.Message != "" {
		printlnFn(res.Message)
	}
	return nil
}

// saveFrame stores a base64 JPEG frame under ./frames.
func (a *App) saveFrame(encoded string) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		printlnFn("Captured frame is not valid base64.")
		return
	}
	path, err := writeFile(framesDir, "frame-"+now().Format("20060102-150405")+".jpg", data)
	if err != nil {
		printlnFn("Frame not saved:", err)
		return
	}
	printlnFn("Frame saved to", path)
}

func (a *App) Cameras(ctx context.Context) error {
	if !a.requireLogin() {
		return nil
	}
	cams, offline, err := a.cameras.List(ctx)
	if err != nil {
		a.report(err)
		return err
	}
	if offline {
		printlnFn("Camera API unavailable, showing cached cameras.")
	}
	if len(cams) == 0 {
		printlnFn("No cameras.")
		return nil
	}

	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tRTSP URL")
	for _, c := range cams {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.ID, c.Name, c.RTSPURL)
	}
	_ = tw.Flush()
	printlnFn(strings.TrimRight(sb.String(), "\n"))
	return nil
}

func (a *App) Camera(ctx context.Context, args []string) error {
	id, ok := a.idArg(args, "camera <id>")
	if !ok {
		return nil
	}
	c, err := a.cameras.Get(ctx, id)
	if err != nil {
		a.report(err)
		return err
	}
	printCamera(c)
	return nil
}

func (a *App) AddCamera(ctx context.Context) error {
	if !a.requireLogin() {
		return nil
	}
	var c models.Camera
	var err error
	if c.Name, err = getSimpleText(a.reader, "Name", a.out); err != nil {
		return err
	}
	if c.RTSPURL, err = getSimpleText(a.reader, "RTSP URL", a.out); err != nil {
		return err
	}
	if c.Pipeline, err = getSimpleText(a.reader, "Pipeline (optional)", a.out); err != nil {
		return err
	}

	created, err := a.cameras.Create(ctx, c)
	if err != nil {
		a.report(err)
		return err
	}
	printlnFn("Added camera", created.ID)
	return nil
}

// EditCamera prompts for new values; Enter keeps the current one.
func (a *App) EditCamera(ctx context.Context, args []string) error {
	id, ok := a.idArg(args, "editcamera <id>")
	if !ok {
		return nil
	}
	c, err := a.cameras.Get(ctx, id)
	if err != nil {
		a.report(err)
		return err
	}

	for _, f := range []struct {
		label string
		field *string
	}{
		{"Name", &c.Name},
		{"RTSP URL", &c.RTSPURL},
		{"Pipeline", &c.Pipeline},
	} {
		v, err := getSimpleText(a.reader, fmt.Sprintf("%s [%s]", f.label, *f.field), a.out)
		if err != nil {
			return err
		}
		if v != "" {
			*f.field = v
		}
	}

	updated, err := a.cameras.Update(ctx, *c)
	if err != nil {
		a.report(err)
		return err
	}
	printlnFn("Updated camera", updated.ID)
	return nil
}

func (a *App) DelCamera(ctx context.Context, args []string) error {
	id, ok := a.idArg(args, "delcamera <id>")
	if !ok {
		return nil
	}
	if err := a.cameras.Delete(ctx, id); err != nil {
		a.report(err)
		return err
	}
	printlnFn("Deleted camera", id)
	return nil
}

func (a *App) idArg(args []string, usage string) (string, bool) {
	if !a.requireLogin() {
		return "", false
	}
	if len(args) == 0 {
		printlnFn("Usage:", usage)
		return "", false
	}
	return args[0], true
}

func (a *App) requireLogin() bool {
	if a.isLoggedIn() {
		return true
	}
	printlnFn("Sign in first (type 'login').")
	return false
}

// report prints a data API failure in user terms.
func (a *App) report(err error) {
	switch {
	case errors.Is(err, netx.ErrUnauthorized):
		printlnFn("Your session has expired. Sign in again.")
	case errors.Is(err, netx.ErrUnavailable):
		printlnFn("Service unavailable, try again later.")
	case errors.Is(err, common.ErrorNotFound):
		printlnFn("Not found.")
	case errors.Is(err, models.ErrInvalidCamera):
		printlnFn(err.Error())
	default:
		printlnFn("Error:", err)
	}
}

func printCamera(c *models.Camera) {
	printlnFn("id:      ", c.ID)
	printlnFn("name:    ", c.Name)
	printlnFn("rtsp url:", c.RTSPURL)
	if c.Pipeline != "" {
		printlnFn("pipeline:", c.Pipeline)
	}
	if !c.UpdatedAt.IsZero() {
		printlnFn("updated: ", c.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
	}
}
