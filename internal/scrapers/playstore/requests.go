package playstore

import (
	"fmt"
	"strconv"

	"playscraper/internal/tree"
)

const (
	batchexecutePath = "/_/PlayStoreUi/data/batchexecute"

	rpc_apps        = "qnKhOb"
	rpc_reviews     = "UsvDTd"
	rpc_permissions = "xdSrCf"

	appsPageSize    = 50
	reviewsPageSize = 150
)

// appsFieldMask selects the app attributes returned by the apps rpc.
const appsFieldMask = "[96,27,4,8,57,30,110,79,11,16,49,1,3,9,12,104,55,56,51,10,34,77]"

func localeQuery(language, country string) map[string]string {
	return map[string]string{
		"hl": language,
		"gl": country,
	}
}

func batchexecuteQuery(rpcID, language, country string) map[string]string {
	return map[string]string{
		"rpcids":       rpcID,
		"f.sid":        "-697906427155521722",
		"bl":           "boq_playuiserver_20190903.08_p0",
		"hl":           language,
		"gl":           country,
		"authuser":     "",
		"soc-app":      "121",
		"soc-platform": "1",
		"soc-device":   "1",
		"_reqid":       "1065213",
	}
}

// jsonString renders s as a json string literal.
func jsonString(s string) string {
	encoded, err := tree.Marshal(tree.String(s))
	if err != nil {
		return strconv.Quote(s)
	}
	return string(encoded)
}

// batchexecuteBody wraps the rpc arguments (itself a json document carried
// as a string) into the f.req envelope.
func batchexecuteBody(rpcID, args, tag string) (string, error) {
	envelope := tree.Array(tree.Array(tree.Array(
		tree.String(rpcID),
		tree.String(args),
		tree.Null(),
		tree.String(tag),
	)))
	encoded, err := tree.Marshal(envelope)
	if err != nil {
		return "", fmt.Errorf("encode %s request: %w", rpcID, err)
	}
	return string(encoded), nil
}

func appsRequestBody(token string, limit int) (string, error) {
	args := fmt.Sprintf(
		"[[null,[[10,[10,%d]],true,null,%s],null,%s]]",
		limit, appsFieldMask, jsonString(token),
	)
	return batchexecuteBody(rpc_apps, args, "generic")
}

// reviewsRequestBody builds the reviews rpc arguments, an empty token asks
// for the first page.
func reviewsRequestBody(appID string, sort ReviewSort, token string) (string, error) {
	encodedToken := "null"
	if token != "" {
		encodedToken = jsonString(token)
	}
	args := fmt.Sprintf(
		"[null,null,[2,%d,[%d,null,%s],null,[]],[%s,7]]",
		int(sort), reviewsPageSize, encodedToken, jsonString(appID),
	)
	return batchexecuteBody(rpc_reviews, args, "generic")
}

func permissionsRequestBody(appID string) (string, error) {
	args := fmt.Sprintf("[[null,[%s,7],[]]]", jsonString(appID))
	return batchexecuteBody(rpc_permissions, args, "1")
}
