package cli

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rcliao/course-media/internal/blocks"
	"github.com/rcliao/course-media/internal/model"
	"github.com/rcliao/course-media/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "put <media-id>",
		Short: "Store a media asset",
		Long: "Store a media asset. The payload is read from --file or piped via stdin. " +
			"Metadata that does not belong to the declared type is dropped before it is written.",
		Args: cobra.ExactArgs(1),
		Run:  runPut,
	}

	cmd.Flags().StringP("project", "p", "", "Project id or .scormproj path (required)")
	cmd.Flags().StringP("type", "t", "", "Media type: image, audio, caption, video, youtube (required)")
	cmd.Flags().String("file", "", "Payload file")
	cmd.Flags().String("page", "", "Page id (default: derived from narration ids)")
	cmd.Flags().String("name", "", "Original file name (default: base name of --file)")
	cmd.Flags().String("mime", "", "MIME type (default: from file extension)")
	cmd.Flags().String("title", "", "Title")
	cmd.Flags().String("source", "", "Source, e.g. youtube")
	cmd.Flags().String("embed-url", "", "Embed URL for youtube videos")
	cmd.Flags().Int("clip-start", -1, "Clip start in seconds")
	cmd.Flags().Int("clip-end", -1, "Clip end in seconds")

	cmd.MarkFlagRequired("project")
	cmd.MarkFlagRequired("type")

	RootCmd.AddCommand(cmd)
}

func runPut(cmd *cobra.Command, args []string) {
	mediaID := args[0]
	projectID := projectIDFlag(cmd)
	typ, _ := cmd.Flags().GetString("type")
	file, _ := cmd.Flags().GetString("file")
	page, _ := cmd.Flags().GetString("page")
	name, _ := cmd.Flags().GetString("name")
	mimeType, _ := cmd.Flags().GetString("mime")
	title, _ := cmd.Flags().GetString("title")
	source, _ := cmd.Flags().GetString("source")
	embedURL, _ := cmd.Flags().GetString("embed-url")
	clipStart, _ := cmd.Flags().GetInt("clip-start")
	clipEnd, _ := cmd.Flags().GetInt("clip-end")

	var data []byte
	var err error
	if file != "" {
		data, err = os.ReadFile(file)
		if err != nil {
			exitErr("read file", err)
		}
		if name == "" {
			name = filepath.Base(file)
		}
		if mimeType == "" {
			mimeType = mime.TypeByExtension(filepath.Ext(file))
		}
	} else {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) == 0 {
			data, err = io.ReadAll(os.Stdin)
			if err != nil {
				exitErr("read stdin", err)
			}
		}
	}

	if page == "" {
		page, _ = blocks.ExpectedPageID(mediaID)
	}

	meta := model.Metadata{
		PageID:       page,
		Type:         model.MediaType(typ),
		OriginalName: name,
		MimeType:     mimeType,
		Source:       source,
		EmbedURL:     embedURL,
		Title:        title,
		IsYouTube:    source == "youtube" || model.MediaType(typ) == model.MediaYouTube,
	}
	if clipStart >= 0 {
		meta.ClipStart = &clipStart
	}
	if clipEnd >= 0 {
		meta.ClipEnd = &clipEnd
	}

	if meta.Type.IsVideo() && meta.IsYouTube && embedURL == "" {
		exitErr("put", fmt.Errorf("--embed-url is required for youtube media"))
	}
	if !meta.Type.IsVideo() && len(data) == 0 {
		exitErr("put", fmt.Errorf("payload is required (--file or stdin)"))
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	rec, err := s.Put(cmd.Context(), store.PutParams{
		ProjectID: projectID,
		MediaID:   mediaID,
		Data:      data,
		Metadata:  meta,
	})
	if err != nil {
		exitErr("put", err)
	}

	printJSON(cmd, rec)
}
