package main

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"relatus/internal/engine"
	"relatus/internal/graph"
	pkgerrors "relatus/pkg/errors"
)

// registerRoutes mounts the API under /api. Every route requires an
// X-User-ID header; all data access is scoped to that owner.
func registerRoutes(router *gin.Engine, eng *engine.Engine, log *zap.Logger) {
	api := router.Group("/api")
	api.Use(requireUser())

	// Node CRUD
	api.POST("/nodes", createNodeHandler(eng))
	api.GET("/nodes", listNodesHandler(eng))
	api.GET("/nodes/:id", getNodeHandler(eng))
	api.PUT("/nodes/:id", updateNodeHandler(eng))
	api.DELETE("/nodes/:id", deleteNodeHandler(eng))

	// Edges
	api.POST("/edges", createEdgeHandler(eng))
	api.PUT("/edges/:id", updateEdgeHandler(eng))
	api.DELETE("/edges/:id", deleteEdgeHandler(eng))
	api.POST("/nodes/:id/reparent", reparentHandler(eng))

	// Intelligence
	api.GET("/nodes/:id/proximity", proximityHandler(eng))
	api.GET("/nodes/:id/classify", classifyNodeHandler(eng))
	api.POST("/classify", classifyDraftHandler(eng))
	api.GET("/goals/:id/paths", goalPathsHandler(eng))
	api.GET("/goals/:id/network", goalNetworkHandler(eng))
	api.GET("/goals/:id/suggestions", goalSuggestionsHandler(eng))
	api.POST("/goals/:id/link", linkPersonHandler(eng))
	api.GET("/nudges", nudgesHandler(eng))
	api.GET("/search", searchHandler(eng))

	// Bulk import
	api.POST("/import/people", importPeopleHandler(eng, log))
}

// requireUser resolves the owner id from the X-User-ID header
func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader("X-User-ID"))
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "X-User-ID header is required"})
			return
		}
		c.Set("user_id", userID)
		c.Next()
	}
}

func ownerID(c *gin.Context) string {
	return c.GetString("user_id")
}

// respondError maps engine errors to HTTP statuses by category
func respondError(c *gin.Context, err error) {
	c.JSON(pkgerrors.HTTPStatus(err), gin.H{"error": err.Error()})
}

// ============================================================================
// Node handlers
// ============================================================================

func createNodeHandler(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input engine.NodeInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}

		node, err := eng.CreateNode(c.Request.Context(), ownerID(c), input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, node)
	}
}

func getNodeHandler(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		node, err := eng.GetNode(c.Request.Context(), ownerID(c), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, node)
	}
}

func updateNodeHandler(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input engine.NodeInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}

		node, err := eng.UpdateNode(c.Request.Context(), ownerID(c), c.Param("id"), input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, node)
	}
}

func deleteNodeHandler(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := eng.DeleteNode(c.Request.Context(), ownerID(c), c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "deleted"})
	}
}

// listNodesHandler builds a NodeFilter from query parameters:
// type, types (comma-separated), sector, q, tags (comma-separated),
// min_strength, max_strength.
func listNodesHandler(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := engine.NewNodeFilter(ownerID(c))

		if v := c.Query("type"); v != "" {
			filter = filter.WithType(graph.NodeType(strings.ToUpper(v)))
		}
		if v := c.Query("types"); v != "" {
			var types []graph.NodeType
			for _, t := range strings.Split(v, ",") {
				if t = strings.TrimSpace(t); t != "" {
					types = append(types, graph.NodeType(strings.ToUpper(t)))
				}
			}
			filter = filter.WithTypes(types...)
		}
		if v := c.Query("sector"); v != "" {
			filter = filter.WithSector(v)
		}
		if v := c.Query("q"); v != "" {
			filter = filter.WithSearch(v)
		}
		if v := c.Query("tags"); v != "" {
			var tags []string
			for _, t := range strings.Split(v, ",") {
				if t = strings.TrimSpace(t); t != "" {
					tags = append(tags, t)
				}
			}
			filter = filter.WithTags(tags...)
		}
		if v := c.Query("min_strength"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "min_strength must be an integer"})
				return
			}
			filter = filter.WithMinStrength(n)
		}
		if v := c.Query("max_strength"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "max_strength must be an integer"})
				return
			}
			filter = filter.WithMaxStrength(n)
		}

		nodes, err := eng.ListNodes(c.Request.Context(), filter)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"nodes": nodes, "count": len(nodes)})
	}
}

// ============================================================================
// Edge handlers
// ============================================================================

func createEdgeHandler(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input engine.EdgeInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}

		edge, err := eng.CreateEdge(c.Request.Context(), ownerID(c), input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, edge)
	}
}

func updateEdgeHandler(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input engine.EdgeInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}

		edge, err := eng.UpdateEdge(c.Request.Context(), ownerID(c), c.Param("id"), input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, edge)
	}
}

func deleteEdgeHandler(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := eng.DeleteEdge(c.Request.Context(), ownerID(c), c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "deleted"})
	}
}

func reparentHandler(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			NewParentID string `json:"new_parent_id"`
			SortOrder   *int   `json:"sort_order"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}

		edge, err := eng.ReparentNode(c.Request.Context(), ownerID(c), c.Param("id"), req.NewParentID, req.SortOrder)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, edge)
	}
}

// ============================================================================
// Intelligence handlers
// ============================================================================

func proximityHandler(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		report, err := eng.AnalyzeProximity(c.Request.Context(), ownerID(c), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func classifyNodeHandler(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		node, err := eng.GetNode(c.Request.Context(), ownerID(c), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"type_suggestion":   eng.SuggestNodeType(node),
			"sector_suggestion": eng.SuggestSector(node),
		})
	}
}

// classifyDraftHandler classifies an unsaved node payload without persisting it
func classifyDraftHandler(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input engine.NodeInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}

		draft := &graph.Node{
			Type:                 input.Type,
			Name:                 input.Name,
			Description:          input.Description,
			Sector:               input.Sector,
			Company:              input.Company,
			Role:                 input.Role,
			RelationshipStrength: input.RelationshipStrength,
			Priority:             input.Priority,
			DueDate:              input.DueDate,
			StartDate:            input.StartDate,
			EndDate:              input.EndDate,
			Status:               input.Status,
		}
		c.JSON(http.StatusOK, gin.H{
			"type_suggestion":   eng.SuggestNodeType(draft),
			"sector_suggestion": eng.SuggestSector(draft),
		})
	}
}

func goalPathsHandler(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		depth := intQuery(c, "depth", 0)
		limit := intQuery(c, "limit", 0)

		suggestions, err := eng.GoalPathSuggestions(c.Request.Context(), ownerID(c), c.Param("id"), depth, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"suggestions": suggestions, "count": len(suggestions)})
	}
}

func goalNetworkHandler(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		report, err := eng.AnalyzeGoalNetwork(c.Request.Context(), ownerID(c), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func goalSuggestionsHandler(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		suggestions, err := eng.SuggestPeopleForGoal(c.Request.Context(), ownerID(c), c.Param("id"), intQuery(c, "limit", 0))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"suggestions": suggestions, "count": len(suggestions)})
	}
}

func linkPersonHandler(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			PersonID string `json:"person_id"`
			Strength *int   `json:"strength"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}

		edge, err := eng.LinkPersonToGoal(c.Request.Context(), ownerID(c), req.PersonID, c.Param("id"), req.Strength)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, edge)
	}
}

func nudgesHandler(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		nudges, err := eng.RelationshipNudges(c.Request.Context(), ownerID(c), intQuery(c, "limit", 0))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"nudges": nudges, "count": len(nudges)})
	}
}

func searchHandler(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		hits, err := eng.SemanticSearch(c.Request.Context(), ownerID(c), c.Query("q"), intQuery(c, "limit", 0))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"hits": hits, "count": len(hits)})
	}
}

// ============================================================================
// Import handler
// ============================================================================

// importPeopleHandler accepts raw CSV in the request body (text/csv) and
// reconciles it against the owner's existing people.
func importPeopleHandler(eng *engine.Engine, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reader := csv.NewReader(c.Request.Body)
		reader.FieldsPerRecord = -1 // rows may be ragged, the importer pads by alias lookup

		records, err := reader.ReadAll()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid CSV: " + err.Error()})
			return
		}
		if len(records) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "CSV body is empty"})
			return
		}

		report, err := eng.ImportPeople(c.Request.Context(), ownerID(c), records[0], records[1:])
		if err != nil {
			respondError(c, err)
			return
		}

		log.Info("CSV import completed",
			zap.String("user_id", ownerID(c)),
			zap.Int("processed", report.Processed),
			zap.Int("created", report.Created),
			zap.Int("skipped", report.Skipped),
			zap.Int("errors", len(report.Errors)),
		)
		c.JSON(http.StatusOK, report)
	}
}

func intQuery(c *gin.Context, key string, def int) int {
	v := c.Query(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
