// Package migrate moves rows of Stack Overflow data dump XML files into the
// database, sanitizing text on the way.
package migrate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/antchfx/xmlquery"
	"github.com/charmbracelet/log"
	"github.com/schollz/progressbar/v3"
	"github.com/so-sentiment/analyzer/common"
	"github.com/so-sentiment/analyzer/database"
	"github.com/so-sentiment/analyzer/database/data_model"
	"github.com/so-sentiment/analyzer/query"
	"github.com/so-sentiment/analyzer/sanitize"
	"gorm.io/gorm"
)

const DefaultBatchSize = 1000

// layout of CreationDate attribute in data dump, always UTC
const dumpTimeLayout = "2006-01-02T15:04:05.999999999"

// DateLayout is the layout accepted for start date of migration.
const DateLayout = "2006-01-02"

// Sources are paths to dump files. Empty path means that document type is
// not migrated. Questions and answers may come from the same Posts file.
type Sources struct {
	Questions string
	Answers   string
	Comments  string
}

func (s Sources) IsEmpty() bool {
	return s.Questions == "" && s.Answers == "" && s.Comments == ""
}

type Options struct {
	// Rows created before this time are skipped. Nil means no limit.
	Since     *time.Time
	BatchSize int
	// Progress bar is written to this writer, nil disables progress output.
	ProgressWriter io.Writer
}

// rowConverter turns a `row` element into a model, returning nil when the row
// should not be migrated.
type rowConverter[T any] func(row *xmlquery.Node) *T

// FillDatabase migrates questions, then answers, then comments. Answers need
// their questions and comments need their posts to be in database already.
func FillDatabase(ctx context.Context, db *gorm.DB, sources Sources, options Options) error {
	options.BatchSize = common.GetIntOr(options.BatchSize, DefaultBatchSize)

	if sources.Questions != "" {
		if err := migrateQuestions(ctx, db, sources.Questions, options); err != nil {
			return err
		}
	}

	if sources.Answers != "" {
		if err := migrateAnswers(ctx, db, sources.Answers, options); err != nil {
			return err
		}
	}

	if sources.Comments != "" {
		if err := migrateComments(ctx, db, sources.Comments, options); err != nil {
			return err
		}
	}

	return nil
}

func migrateQuestions(ctx context.Context, db *gorm.DB, path string, options Options) error {
	log.Infof("migrating questions from %s into the database ...", path)

	count, err := xmlToDatabase(ctx, db, path, options, func(row *xmlquery.Node) *data_model.Post {
		return postRowToModel(row, data_model.PostTypeQuestion, nil)
	})
	if err != nil {
		return err
	}

	log.Infof("questions added: %d", count)
	return nil
}

func migrateAnswers(ctx context.Context, db *gorm.DB, path string, options Options) error {
	log.Info("retrieving question ids ...")
	questionIDs, err := idSet(db, query.ModelPost, data_model.PostTypeQuestion)
	if err != nil {
		return err
	}
	log.Infof("found %d question ids", len(questionIDs))

	log.Infof("migrating answers from %s into the database ...", path)
	count, err := xmlToDatabase(ctx, db, path, options, func(row *xmlquery.Node) *data_model.Post {
		return postRowToModel(row, data_model.PostTypeAnswer, questionIDs)
	})
	if err != nil {
		return err
	}

	log.Infof("answers added: %d", count)
	return nil
}

func migrateComments(ctx context.Context, db *gorm.DB, path string, options Options) error {
	log.Info("retrieving post ids ...")
	postIDs, err := idSet(db, query.ModelPost, 0)
	if err != nil {
		return err
	}
	log.Infof("found %d post ids", len(postIDs))

	log.Infof("migrating comments from %s into the database ...", path)
	count, err := xmlToDatabase(ctx, db, path, options, func(row *xmlquery.Node) *data_model.Comment {
		return commentRowToModel(row, postIDs)
	})
	if err != nil {
		return err
	}

	log.Infof("comments added: %d", count)
	return nil
}

func idSet(db *gorm.DB, model query.Model, postType data_model.PostType) (map[int64]bool, error) {
	idQuery, err := query.IDsByModel(db, model, postType)
	if err != nil {
		return nil, err
	}

	ids, err := query.PluckIDs(idQuery)
	if err != nil {
		return nil, err
	}

	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}

	return set, nil
}

// xmlToDatabase streams rows of given dump file, converts them and commits
// them in batches. Returns number of committed models.
func xmlToDatabase[T any](ctx context.Context, db *gorm.DB, path string, options Options, convert rowConverter[T]) (int, error) {
	reader, err := common.OpenInput(path)
	if err != nil {
		return 0, err
	}
	defer reader.Close()

	parser, err := xmlquery.CreateStreamParser(reader, "//row")
	if err != nil {
		return 0, fmt.Errorf("failed to create XML parser for %s: %s", path, err)
	}

	var bar *progressbar.ProgressBar
	if options.ProgressWriter != nil {
		bar = progressbar.NewOptions64(
			-1,
			progressbar.OptionSetWriter(options.ProgressWriter),
			progressbar.OptionSetDescription(path),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionSetRenderBlankState(true),
		)
		defer bar.Finish()
	}

	count := 0
	batch := make([]*T, 0, options.BatchSize)
	commit := func() {
		committed := len(batch)
		if !database.BatchCommit(db, batch) {
			committed = database.CommitAllSeparately(db, batch)
		}
		count += committed
		batch = batch[:0]
		log.Debugf("added: %d", count)
	}

	for {
		if err := ctx.Err(); err != nil {
			return count, err
		}

		row, err := parser.Read()
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return count, fmt.Errorf("failed to parse %s: %s", path, err)
		}

		if bar != nil {
			bar.Add(1)
		}

		if !isAfter(row, options.Since) {
			continue
		}

		model := convert(row)
		if model == nil {
			continue
		}

		batch = append(batch, model)
		if len(batch) >= options.BatchSize {
			commit()
		}
	}

	if len(batch) > 0 {
		commit()
	}

	return count, nil
}

// parseCreationDate reads CreationDate attribute of a row.
func parseCreationDate(row *xmlquery.Node) (time.Time, error) {
	raw := row.SelectAttr("CreationDate")
	date, err := time.Parse(dumpTimeLayout, raw)
	if err != nil {
		return date, fmt.Errorf("invalid CreationDate %q: %s", raw, err)
	}
	return date, nil
}

func isAfter(row *xmlquery.Node, since *time.Time) bool {
	if since == nil {
		return true
	}

	date, err := parseCreationDate(row)
	if err != nil {
		log.Warnf("row Id=%s skipped: %s", row.SelectAttr("Id"), err)
		return false
	}

	return !date.Before(*since)
}

func parseID(row *xmlquery.Node, attr string) (int64, error) {
	raw := row.SelectAttr(attr)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", attr, raw)
	}
	return id, nil
}

// truncateToDate keeps only date part of t.
func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func optionalAttr(row *xmlquery.Node, attr string) *string {
	value := row.SelectAttr(attr)
	if value == "" {
		return nil
	}
	return &value
}

// postRowToModel converts a row of Posts file. Only rows of target post type
// are converted, answers additionally need their parent in questionIDs.
func postRowToModel(row *xmlquery.Node, target data_model.PostType, questionIDs map[int64]bool) *data_model.Post {
	rawType, err := strconv.Atoi(row.SelectAttr("PostTypeId"))
	if err != nil {
		return nil
	}

	postType := data_model.PostType(rawType)
	if !postType.IsValid() || postType != target {
		return nil
	}

	id, err := parseID(row, "Id")
	if err != nil {
		log.Warnf("post skipped: %s", err)
		return nil
	}

	post := &data_model.Post{
		ID:         id,
		PostTypeID: postType,
	}

	if postType == data_model.PostTypeAnswer {
		parentID, err := parseID(row, "ParentId")
		if err != nil || !questionIDs[parentID] {
			return nil
		}
		post.ParentID = &parentID
	} else {
		post.Title = optionalAttr(row, "Title")
		post.Tags = optionalAttr(row, "Tags")
	}

	post.Text, err = sanitize.Post(row.SelectAttr("Body"))
	if err != nil {
		log.Errorf("sanitization failed for Post with Id=%d: %s", id, err)
		return nil
	}

	date, err := parseCreationDate(row)
	if err != nil {
		log.Warnf("post Id=%d skipped: %s", id, err)
		return nil
	}
	post.CreationDate = truncateToDate(date)

	return post
}

// commentRowToModel converts a row of Comments file, returning nil when the
// post it belongs to is not in postIDs.
func commentRowToModel(row *xmlquery.Node, postIDs map[int64]bool) *data_model.Comment {
	postID, err := parseID(row, "PostId")
	if err != nil || !postIDs[postID] {
		return nil
	}

	id, err := parseID(row, "Id")
	if err != nil {
		log.Warnf("comment skipped: %s", err)
		return nil
	}

	text, err := sanitize.Comment(row.SelectAttr("Text"))
	if err != nil {
		log.Errorf("sanitization failed for Comment with Id=%d: %s", id, err)
		return nil
	}

	date, err := parseCreationDate(row)
	if err != nil {
		log.Warnf("comment Id=%d skipped: %s", id, err)
		return nil
	}

	return &data_model.Comment{
		ID:           id,
		CreationDate: truncateToDate(date),
		Text:         text,
		PostID:       postID,
	}
}
