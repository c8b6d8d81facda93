package activity

import (
	"encoding/json"

	"cowork/authz"
	"cowork/client/es"
	"cowork/persistence"
	"cowork/session"
)

var SearchActivitiesFunc = SearchActivities

func SearchActivities(q *ActivitySearchQuery, sec *session.Session) ([]ActivityRecord, error) {
	db := persistence.ActiveDataSourceManager.GormDB()
	if err := authz.CheckWorkspaceFunc(db, authz.OpRead, q.WorkspaceID, sec); err != nil {
		return nil, err
	}

	query := es.H{
		"query": es.H{
			"bool": es.H{
				"filter": []es.H{
					{"term": es.H{"workspaceId": q.WorkspaceID}},
				},
				"must": []es.H{
					{"match": es.H{"targetText": q.Keyword}},
				},
			},
		},
		"sort": []es.H{
			{"createTime": es.H{"order": "desc"}},
		},
	}

	result, err := es.SearchFunc(sec.Context, ActivityIndexName, query)
	if err != nil {
		return nil, err
	}

	records := []ActivityRecord{}
	for _, hit := range result.Hits.Hits {
		record := ActivityRecord{}
		if err := json.Unmarshal([]byte(hit.Source), &record); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}
