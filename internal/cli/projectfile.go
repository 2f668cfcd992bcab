package cli

import (
	"github.com/spf13/cobra"

	"github.com/rcliao/course-media/internal/model"
	"github.com/rcliao/course-media/internal/project"
)

// projectIDFlag accepts either a bare project id or a .scormproj path.
func projectIDFlag(cmd *cobra.Command) string {
	p, _ := cmd.Flags().GetString("project")
	return project.ExtractProjectID(p)
}

// openProject locks and loads a project file. The returned release func must
// be called when the command is done with the file.
func openProject(path string) (*project.File, model.ContentTree, func()) {
	lock, err := project.Acquire(path)
	if err != nil {
		exitErr("lock project", err)
	}
	release := func() {
		if err := lock.Release(); err != nil {
			log.Warn("failed to release project lock", "path", path, "error", err)
		}
	}

	f, err := project.Load(path)
	if err != nil {
		release()
		exitErr("load project", err)
	}
	tree, err := f.Tree()
	if err != nil {
		release()
		exitErr("load project", err)
	}
	log.Debug("loaded project", "path", path, "project_id", f.ID(), "media", tree.MediaCount())
	return f, tree, release
}
