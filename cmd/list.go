package cmd

import (
	"bytes"

	"github.com/misrayazgan/RayTracer/pkg/scene"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// ListScenes prints the scene files of a directory grouped by their
// metadata group.
func ListScenes(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	dir := "."
	if ctx.NArg() > 0 {
		dir = ctx.Args().First()
	}

	scenes, err := scene.ListScenes(dir)
	if err != nil {
		return err
	}
	if len(scenes) == 0 {
		logger.Noticef("no scene files in %s", dir)
		return nil
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Group", "Scene", "Description", "File"})
	for _, group := range scene.GroupScenes(scenes) {
		for _, info := range group.Scenes {
			table.Append([]string{group.Name, info.DisplayName, info.Description, info.FilePath})
		}
	}
	table.Render()

	logger.Noticef("scenes in %s\n%s", dir, buf.String())
	return nil
}
