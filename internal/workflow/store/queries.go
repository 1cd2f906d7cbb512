/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package store

import (
	dbmodel "github.com/skyforge/missionflow/internal/system/database/model"
)

var (
	// QueryCreateBlobTable creates the blob table when missing.
	QueryCreateBlobTable = dbmodel.DBQuery{
		ID: "WFQ-BLOB_MGT-00",
		Query: `CREATE TABLE IF NOT EXISTS WORKFLOW_BLOB (BLOB_KEY VARCHAR(255) PRIMARY KEY, ` +
			`CONTENT TEXT NOT NULL, UPDATED_AT TIMESTAMP NOT NULL)`,
	}

	// QueryGetBlob is the query to read a blob by key.
	QueryGetBlob = dbmodel.DBQuery{
		ID:    "WFQ-BLOB_MGT-01",
		Query: `SELECT CONTENT FROM WORKFLOW_BLOB WHERE BLOB_KEY = $1`,
	}

	// QueryPutBlob is the query to insert or replace a blob.
	QueryPutBlob = dbmodel.DBQuery{
		ID: "WFQ-BLOB_MGT-02",
		Query: `INSERT INTO WORKFLOW_BLOB (BLOB_KEY, CONTENT, UPDATED_AT) VALUES ($1, $2, $3) ` +
			`ON CONFLICT (BLOB_KEY) DO UPDATE SET CONTENT = excluded.CONTENT, UPDATED_AT = excluded.UPDATED_AT`,
	}

	// QueryCheckBlobTable reads the blob table for readiness checks.
	QueryCheckBlobTable = dbmodel.DBQuery{
		ID:    "WFQ-BLOB_MGT-03",
		Query: `SELECT COUNT(*) AS BLOB_COUNT FROM WORKFLOW_BLOB`,
	}
)
