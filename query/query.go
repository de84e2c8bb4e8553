package query

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/so-sentiment/analyzer/database/data_model"
	"gorm.io/gorm"
)

// Model selects table a query operates on.
type Model string

const (
	ModelPost    Model = "post"
	ModelComment Model = "comment"
)

// languages used in the study, tag filtering only considers these
var Languages = []string{"javascript", "c", "c++", "sql", "python", "php", "java", "c#"}

// maximum number of ids put into a single IN clause
const idChunkSize = 500

var (
	ErrEmptyQuery        = errors.New("query returned no results")
	ErrTagNotConsidered  = errors.New("tag not part of considered tags")
	ErrSampleTooLarge    = errors.New("sample size larger than population")
	ErrUnsupportedFilter = errors.New("unsupported filter")
)

// IsConsideredTag reports whether tag is one of Languages.
func IsConsideredTag(tag string) bool {
	return slices.Contains(Languages, tag)
}

func tagPattern(tag string) string {
	return "%<" + tag + ">%"
}

func modelValue(model Model) (any, error) {
	switch model {
	case ModelPost:
		return &data_model.Post{}, nil
	case ModelComment:
		return &data_model.Comment{}, nil
	default:
		return nil, fmt.Errorf("%w: model %q", ErrUnsupportedFilter, model)
	}
}

// IDsByModel returns a query of ids of given model. Post type filter is only
// applied to posts, zero value means all post types.
func IDsByModel(db *gorm.DB, model Model, postType data_model.PostType) (*gorm.DB, error) {
	value, err := modelValue(model)
	if err != nil {
		return nil, err
	}

	query := db.Model(value).Select("id")
	if model == ModelPost && postType != 0 {
		log.Infof("filtering by %s", postType)
		query = query.Where("post_type_id = ?", postType)
	}

	return query, nil
}

// IDsByTag returns a query of ids of documents related to questions tagged
// with `tag` and with no other considered language.
func IDsByTag(db *gorm.DB, tag string, model Model, postType data_model.PostType) (*gorm.DB, error) {
	switch {
	case model == ModelComment:
		return commentIDsByTag(db, tag)
	case model == ModelPost && postType == data_model.PostTypeAnswer:
		return answerIDsByTag(db, tag)
	case model == ModelPost:
		return questionIDsByTag(db, tag)
	default:
		return nil, fmt.Errorf("%w: model %q", ErrUnsupportedFilter, model)
	}
}

// filterByNonOverlappingTags keeps rows whose tag column contains `tag` and
// none of the other considered tags.
func filterByNonOverlappingTags(query *gorm.DB, column string, tag string) (*gorm.DB, error) {
	if !IsConsideredTag(tag) {
		return nil, fmt.Errorf("%w: %q not in %v", ErrTagNotConsidered, tag, Languages)
	}

	query = query.Where(column+" LIKE ?", tagPattern(tag))
	for _, other := range Languages {
		if other == tag {
			continue
		}
		query = query.Where(column+" NOT LIKE ?", tagPattern(other))
	}

	return query, nil
}

func questionIDsByTag(db *gorm.DB, tag string) (*gorm.DB, error) {
	query := db.Model(&data_model.Post{}).
		Select("id").
		Where("post_type_id = ?", data_model.PostTypeQuestion)
	return filterByNonOverlappingTags(query, "tags", tag)
}

func answerIDsByTag(db *gorm.DB, tag string) (*gorm.DB, error) {
	query := db.Table("post AS answer").
		Select("answer.id").
		Joins("JOIN post AS question ON answer.parent_id = question.id")
	return filterByNonOverlappingTags(query, "question.tags", tag)
}

func commentIDsByTag(db *gorm.DB, tag string) (*gorm.DB, error) {
	questions, err := questionIDsByTag(db, tag)
	if err != nil {
		return nil, err
	}

	answers := db.Model(&data_model.Post{}).
		Select("id").
		Where("parent_id IN (?)", questions)

	query := db.Model(&data_model.Comment{}).
		Select("id").
		Where("post_id IN (?) OR post_id IN (?)", questions, answers)

	return query, nil
}

// PluckIDs runs an id query and returns ids in ascending order.
func PluckIDs(query *gorm.DB) ([]int64, error) {
	ids := []int64{}
	if err := query.Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to query ids: %s", err)
	}

	slices.Sort(ids)

	return ids, nil
}

// Elems returns documents of given model with given ids, ordered by id. Ids
// that do not exist are silently ignored.
func Elems(db *gorm.DB, ids []int64, model Model) ([]data_model.Document, error) {
	documents := []data_model.Document{}

	for st := 0; st < len(ids); st += idChunkSize {
		ed := min(st+idChunkSize, len(ids))
		chunk := ids[st:ed]

		switch model {
		case ModelPost:
			posts := []*data_model.Post{}
			if err := db.Where("id IN ?", chunk).Find(&posts).Error; err != nil {
				return nil, fmt.Errorf("failed to fetch posts: %s", err)
			}
			for _, post := range posts {
				documents = append(documents, post)
			}
		case ModelComment:
			comments := []*data_model.Comment{}
			if err := db.Where("id IN ?", chunk).Find(&comments).Error; err != nil {
				return nil, fmt.Errorf("failed to fetch comments: %s", err)
			}
			for _, comment := range comments {
				documents = append(documents, comment)
			}
		default:
			return nil, fmt.Errorf("%w: model %q", ErrUnsupportedFilter, model)
		}
	}

	sort.Slice(documents, func(i, j int) bool {
		return documents[i].GetID() < documents[j].GetID()
	})

	return documents, nil
}
